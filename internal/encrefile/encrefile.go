// Package encrefile reads and writes the binary .encre image format: a
// fixed header, the palette's Oklab points, and a bit-packed stream of
// palette indices.
package encrefile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/encreerr"
)

// magicSize is the byte length of the fixed magic string, including its
// trailing NUL.
const magicSize = 6

var magic = [magicSize]byte{'e', 'n', 'c', 'r', 'e', 0}

// bufferSize is the streaming chunk size used on both the read and write
// paths, so a write never buffers more of the index stream than this many
// bytes at a time.
const bufferSize = 4096

// Rotation mirrors the device-profile rotation enum; automatic picks
// portrait when the source is taller than it is wide.
type Rotation uint8

const (
	RotationAutomatic Rotation = iota
	RotationLandscape
	RotationPortrait
	RotationLandscapeUpsideDown
	RotationPortraitUpsideDown
)

// Header is the fixed-size prefix of an .encre file.
type Header struct {
	BitsPerColor uint8
	Rotation     Rotation
	PaletteSize  uint16
	Width        uint16
	Height       uint16
}

const headerSize = magicSize + 1 + 1 + 2 + 2 + 2

// Write streams a header, the palette's Oklab points, and a bit-packed
// index stream to w. palette must have PaletteSize entries and indices must
// have width*height entries, each < PaletteSize.
func Write(w io.Writer, width, height int, palette []colorspace.Oklab, rotation Rotation, indices []uint8) error {
	if width <= 0 || height <= 0 || len(indices) != width*height {
		return encreerr.ErrInvalidInput
	}
	if width > math.MaxUint16 || height > math.MaxUint16 || len(palette) > math.MaxUint16 {
		return encreerr.ErrPaletteTooLarge
	}

	bitsPerColor := bitsPerColor(len(palette))

	bw := bufio.NewWriterSize(w, bufferSize)

	header := Header{
		BitsPerColor: uint8(bitsPerColor),
		Rotation:     rotation,
		PaletteSize:  uint16(len(palette)),
		Width:        uint16(width),
		Height:       uint16(height),
	}
	if err := writeHeader(bw, header); err != nil {
		return fmt.Errorf("encrefile: write header: %w", encreerr.ErrIOFailure)
	}

	for _, p := range palette {
		if err := binary.Write(bw, binary.LittleEndian, [3]float32{float32(p.L), float32(p.A), float32(p.B)}); err != nil {
			return fmt.Errorf("encrefile: write palette: %w", encreerr.ErrIOFailure)
		}
	}

	if err := writeIndices(bw, indices, bitsPerColor); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encrefile: flush: %w", encreerr.ErrIOFailure)
	}
	return nil
}

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, headerSize)
	copy(buf[0:magicSize], magic[:])
	buf[magicSize] = h.BitsPerColor
	buf[magicSize+1] = uint8(h.Rotation)
	binary.LittleEndian.PutUint16(buf[magicSize+2:], h.PaletteSize)
	binary.LittleEndian.PutUint16(buf[magicSize+4:], h.Width)
	binary.LittleEndian.PutUint16(buf[magicSize+6:], h.Height)
	_, err := w.Write(buf)
	return err
}

// writeIndices packs indices at bitsPerColor bits each, LSB-first within a
// byte, flushing bufferSize-byte chunks to w as they fill so the whole
// index stream is never held in memory at once. A sample can straddle more
// than two bytes once bitsPerColor climbs past 9 (palette_size >= 512), so
// each sample is written a run of bits at a time rather than assuming a
// single byte boundary crossing.
func writeIndices(w io.Writer, indices []uint8, bitsPerColor int) error {
	mask := uint32(1)<<uint(bitsPerColor) - 1

	var buf [bufferSize]byte
	bitIndex := 0

	flush := func(upTo int) error {
		if _, err := w.Write(buf[:upTo]); err != nil {
			return fmt.Errorf("encrefile: write indices: %w", encreerr.ErrIOFailure)
		}
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}

	for _, idx := range indices {
		color := uint32(idx) & mask
		remaining := bitsPerColor
		shift := 0

		for remaining > 0 {
			byteIndex := bitIndex >> 3
			bitOffset := bitIndex & 7
			if byteIndex >= bufferSize {
				if err := flush(bufferSize); err != nil {
					return err
				}
				bitIndex = 0
				byteIndex = 0
				bitOffset = 0
			}

			n := 8 - bitOffset
			if n > remaining {
				n = remaining
			}
			chunk := (color >> uint(shift)) & (uint32(1)<<uint(n) - 1)
			buf[byteIndex] |= uint8(chunk << uint(bitOffset))

			shift += n
			remaining -= n
			bitIndex += n
		}
	}

	if bitIndex > 0 {
		if err := flush((bitIndex + 7) / 8); err != nil {
			return err
		}
	}
	return nil
}

func bitsPerColor(paletteSize int) int {
	bits := 0
	for v := paletteSize; v > 0; v >>= 1 {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}
