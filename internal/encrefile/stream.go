package encrefile

import (
	"bytes"

	"github.com/AnyUserName/encre/internal/encreerr"
)

// StreamReader accumulates an .encre file's bytes incrementally, as they
// arrive off a slow or chunked transport (the embedded reader's usual
// case: a serial link or a socket that delivers a few hundred bytes at a
// time). It validates the header against an expected device profile as
// soon as it has seen enough bytes, without waiting for the whole file.
type StreamReader struct {
	expectWidth, expectHeight int
	expectPaletteSize         int
	expectBitsPerColor        int

	buf    []byte
	offset int

	headerRead  bool
	paletteRead bool
	colorsRead  bool
}

// NewStreamReader creates a reader that will reject any file whose header
// doesn't match the given device profile. total is the full expected file
// size in bytes (header + palette + packed colors).
func NewStreamReader(expectWidth, expectHeight, expectPaletteSize, expectBitsPerColor, total int) *StreamReader {
	return &StreamReader{
		expectWidth:        expectWidth,
		expectHeight:       expectHeight,
		expectPaletteSize:  expectPaletteSize,
		expectBitsPerColor: expectBitsPerColor,
		buf:                make([]byte, total),
	}
}

// HeaderRead reports whether enough bytes have arrived to validate the header.
func (s *StreamReader) HeaderRead() bool { return s.headerRead }

// PaletteRead reports whether enough bytes have arrived to read the palette.
func (s *StreamReader) PaletteRead() bool { return s.paletteRead }

// Done reports whether the whole file has arrived.
func (s *StreamReader) Done() bool { return s.colorsRead }

// Feed appends chunk to the accumulated buffer and advances the read
// state machine. It returns encreerr.ErrIncompatibleFile as soon as a
// validated header doesn't match the expected device profile, and
// encreerr.ErrMalformedFile if chunk would overrun the expected file size.
func (s *StreamReader) Feed(chunk []byte) error {
	if s.offset+len(chunk) > len(s.buf) {
		return encreerr.ErrMalformedFile
	}
	copy(s.buf[s.offset:], chunk)
	s.offset += len(chunk)

	if !s.headerRead && s.offset >= headerSize {
		s.headerRead = true
		header, err := readHeader(bytes.NewReader(s.buf[:headerSize]))
		if err != nil {
			return err
		}
		if int(header.BitsPerColor) != s.expectBitsPerColor ||
			int(header.PaletteSize) != s.expectPaletteSize ||
			int(header.Width) != s.expectWidth ||
			int(header.Height) != s.expectHeight {
			return encreerr.ErrIncompatibleFile
		}
	}

	paletteEnd := headerSize + s.expectPaletteSize*3*4
	if !s.paletteRead && s.offset >= paletteEnd {
		s.paletteRead = true
	}

	if !s.colorsRead && s.offset == len(s.buf) {
		s.colorsRead = true
	}

	return nil
}

// Image decodes the accumulated buffer. Feed must have reached Done first.
func (s *StreamReader) Image() (*Image, error) {
	if !s.colorsRead {
		return nil, encreerr.ErrMalformedFile
	}
	return Read(bytes.NewReader(s.buf))
}
