package encrefile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/encreerr"
)

// Image is the fully decoded contents of an .encre file.
type Image struct {
	Width, Height int
	Rotation      Rotation
	Palette       []colorspace.Oklab
	Indices       []uint8
}

// Read decodes a complete .encre file from r.
func Read(r io.Reader) (*Image, error) {
	br := bufio.NewReaderSize(r, bufferSize)

	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	palette, err := readPalette(br, int(header.PaletteSize))
	if err != nil {
		return nil, err
	}

	count := int(header.Width) * int(header.Height)
	indices, err := readIndices(br, count, int(header.BitsPerColor))
	if err != nil {
		return nil, err
	}

	if _, err := br.Peek(1); err != io.EOF {
		return nil, fmt.Errorf("encrefile: trailing data: %w", encreerr.ErrMalformedFile)
	}

	return &Image{
		Width:    int(header.Width),
		Height:   int(header.Height),
		Rotation: header.Rotation,
		Palette:  palette,
		Indices:  indices,
	}, nil
}

// ReadCompatible decodes an .encre file only if its width, height, and
// palette size match the caller's expectations; a mismatch is reported as
// encreerr.ErrIncompatibleFile rather than decoded partially.
func ReadCompatible(r io.Reader, width, height, paletteSize int) (*Image, error) {
	img, err := Read(r)
	if err != nil {
		return nil, err
	}
	if img.Width != width || img.Height != height || len(img.Palette) != paletteSize {
		return nil, encreerr.ErrIncompatibleFile
	}
	return img, nil
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("encrefile: read header: %w", encreerr.ErrMalformedFile)
	}

	var gotMagic [magicSize]byte
	copy(gotMagic[:], buf[:magicSize])
	if gotMagic != magic {
		return Header{}, fmt.Errorf("encrefile: bad magic: %w", encreerr.ErrMalformedFile)
	}

	return Header{
		BitsPerColor: buf[magicSize],
		Rotation:     Rotation(buf[magicSize+1]),
		PaletteSize:  binary.LittleEndian.Uint16(buf[magicSize+2:]),
		Width:        binary.LittleEndian.Uint16(buf[magicSize+4:]),
		Height:       binary.LittleEndian.Uint16(buf[magicSize+6:]),
	}, nil
}

func readPalette(r io.Reader, size int) ([]colorspace.Oklab, error) {
	out := make([]colorspace.Oklab, size)
	for i := range out {
		var v [3]float32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("encrefile: read palette: %w", encreerr.ErrMalformedFile)
		}
		out[i] = colorspace.Oklab{L: float64(v[0]), A: float64(v[1]), B: float64(v[2])}
	}
	return out, nil
}

// readIndices unpacks count bitsPerColor-wide samples from r, buffering
// bufferSize bytes at a time so decoding a large image never requires
// holding its whole packed byte stream in memory. A sample can straddle
// more than two bytes once bitsPerColor climbs past 9 (palette_size >= 512),
// so each sample is assembled a run of bits at a time rather than assuming
// a single byte boundary crossing.
func readIndices(r io.Reader, count, bitsPerColor int) ([]uint8, error) {
	out := make([]uint8, count)
	mask := uint32(1)<<uint(bitsPerColor) - 1

	byteCount := (count*bitsPerColor + 7) / 8

	var buf [bufferSize]byte
	remaining := byteCount
	fill := func() error {
		n := bufferSize
		if remaining < n {
			n = remaining
		}
		if n == 0 {
			return nil
		}
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return fmt.Errorf("encrefile: read indices: %w", encreerr.ErrMalformedFile)
		}
		remaining -= n
		return nil
	}

	if err := fill(); err != nil {
		return nil, err
	}

	bitIndex := 0
	for i := range out {
		var color uint32
		need := bitsPerColor
		shift := 0

		for need > 0 {
			byteIndex := bitIndex >> 3
			bitOffset := bitIndex & 7
			if byteIndex >= bufferSize {
				if err := fill(); err != nil {
					return nil, err
				}
				bitIndex = 0
				byteIndex = 0
				bitOffset = 0
			}

			n := 8 - bitOffset
			if n > need {
				n = need
			}
			chunk := (uint32(buf[byteIndex]) >> uint(bitOffset)) & (uint32(1)<<uint(n) - 1)
			color |= chunk << uint(shift)

			shift += n
			need -= n
			bitIndex += n
		}

		out[i] = uint8(color & mask)
	}

	return out, nil
}
