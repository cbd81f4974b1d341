package encrefile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/encreerr"
)

func samplePalette() []colorspace.Oklab {
	return []colorspace.Oklab{
		{L: 10, A: 1, B: -1},
		{L: 80, A: 0, B: 0},
		{L: 40, A: 20, B: -20},
		{L: 55, A: -10, B: 15},
		{L: 30, A: 5, B: 5},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	palette := samplePalette()
	width, height := 9, 7
	indices := make([]uint8, width*height)
	for i := range indices {
		indices[i] = uint8(i % len(palette))
	}

	var buf bytes.Buffer
	if err := Write(&buf, width, height, palette, RotationPortrait, indices); err != nil {
		t.Fatalf("Write: %v", err)
	}

	img, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if img.Width != width || img.Height != height {
		t.Errorf("dimensions = %dx%d, want %dx%d", img.Width, img.Height, width, height)
	}
	if img.Rotation != RotationPortrait {
		t.Errorf("rotation = %v, want %v", img.Rotation, RotationPortrait)
	}
	if len(img.Palette) != len(palette) {
		t.Fatalf("palette size = %d, want %d", len(img.Palette), len(palette))
	}
	for i, p := range palette {
		got := img.Palette[i]
		if !almostEqual(got.L, p.L) || !almostEqual(got.A, p.A) || !almostEqual(got.B, p.B) {
			t.Errorf("palette[%d] = %+v, want %+v", i, got, p)
		}
	}
	if len(img.Indices) != len(indices) {
		t.Fatalf("index count = %d, want %d", len(img.Indices), len(indices))
	}
	for i := range indices {
		if img.Indices[i] != indices[i] {
			t.Errorf("index[%d] = %d, want %d", i, img.Indices[i], indices[i])
		}
	}
}

func TestReadCompatible_MismatchRejected(t *testing.T) {
	palette := samplePalette()
	indices := make([]uint8, 6*4)

	var buf bytes.Buffer
	if err := Write(&buf, 6, 4, palette, RotationAutomatic, indices); err != nil {
		t.Fatalf("Write: %v", err)
	}

	_, err := ReadCompatible(bytes.NewReader(buf.Bytes()), 6, 5, len(palette))
	if !errors.Is(err, encreerr.ErrIncompatibleFile) {
		t.Errorf("err = %v, want ErrIncompatibleFile", err)
	}
}

func TestRead_BadMagic(t *testing.T) {
	garbage := make([]byte, headerSize)
	_, err := Read(bytes.NewReader(garbage))
	if !errors.Is(err, encreerr.ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

func TestWrite_IndexCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, 2, 2, samplePalette(), RotationAutomatic, []uint8{0, 1, 2})
	if !errors.Is(err, encreerr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRead_RejectsTrailingBytes(t *testing.T) {
	palette := samplePalette()
	indices := make([]uint8, 6*4)

	var buf bytes.Buffer
	if err := Write(&buf, 6, 4, palette, RotationAutomatic, indices); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf.Write([]byte{0xFF, 0xFF, 0xFF})

	_, err := Read(&buf)
	if !errors.Is(err, encreerr.ErrMalformedFile) {
		t.Errorf("err = %v, want ErrMalformedFile", err)
	}
}

func TestStreamReader_IncrementalFeed(t *testing.T) {
	palette := samplePalette()
	width, height := 6, 4
	indices := make([]uint8, width*height)
	for i := range indices {
		indices[i] = uint8(i % len(palette))
	}

	var buf bytes.Buffer
	if err := Write(&buf, width, height, palette, RotationLandscape, indices); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	sr := NewStreamReader(width, height, len(palette), bitsPerColor(len(palette)), len(data))
	for i := 0; i < len(data); i += 3 {
		end := i + 3
		if end > len(data) {
			end = len(data)
		}
		if err := sr.Feed(data[i:end]); err != nil {
			t.Fatalf("Feed at %d: %v", i, err)
		}
	}

	if !sr.Done() {
		t.Fatal("stream reader not done after feeding full file")
	}

	img, err := sr.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.Width != width || img.Height != height {
		t.Errorf("dimensions = %dx%d, want %dx%d", img.Width, img.Height, width, height)
	}
}

func TestStreamReader_RejectsMismatchedProfile(t *testing.T) {
	palette := samplePalette()
	indices := make([]uint8, 4*4)

	var buf bytes.Buffer
	if err := Write(&buf, 4, 4, palette, RotationAutomatic, indices); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	sr := NewStreamReader(5, 5, len(palette), bitsPerColor(len(palette)), len(data))
	err := sr.Feed(data[:headerSize])
	if !errors.Is(err, encreerr.ErrIncompatibleFile) {
		t.Errorf("err = %v, want ErrIncompatibleFile", err)
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-4
	d := a - b
	return d > -eps && d < eps
}
