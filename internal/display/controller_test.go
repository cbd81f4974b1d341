package display

import (
	"context"
	"errors"
	"testing"
)

type event struct {
	isCommand bool
	cmd       byte
	data      []byte
}

type fakeTransport struct {
	commands []byte
	data     [][]byte
	events   []event
	resets   int
	busyAt   []bool
	busyIdx  int
}

func (f *fakeTransport) SendCommand(cmd byte) error {
	f.commands = append(f.commands, cmd)
	f.events = append(f.events, event{isCommand: true, cmd: cmd})
	return nil
}

func (f *fakeTransport) SendData(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.data = append(f.data, cp)
	f.events = append(f.events, event{data: cp})
	return nil
}

func (f *fakeTransport) Busy() (bool, error) {
	if f.busyIdx >= len(f.busyAt) {
		return false, nil
	}
	v := f.busyAt[f.busyIdx]
	f.busyIdx++
	return v, nil
}

func (f *fakeTransport) Reset() error {
	f.resets++
	return nil
}

func TestWriteImage_SendsInitSequenceAndShutdown(t *testing.T) {
	profile := Profile{Width: 2, Height: 2, PaletteSize: 6, BitsPerColor: 3}
	transport := &fakeTransport{busyAt: []bool{false, false, false}}
	c := New(transport, profile)

	indices := []uint8{0, 1, 2, 5}
	if err := c.WriteImage(context.Background(), indices); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	if transport.resets != 1 {
		t.Errorf("resets = %d, want 1", transport.resets)
	}

	mustContain := []byte{cmdCMDH, cmdPWR, cmdPSR, cmdDTM, cmdPON, cmdDRF, cmdPOF, cmdDSLP}
	for _, cmd := range mustContain {
		found := false
		for _, c := range transport.commands {
			if c == cmd {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command 0x%02x not sent", cmd)
		}
	}

	last := transport.commands[len(transport.commands)-1]
	if last != cmdDSLP {
		t.Errorf("last command = 0x%02x, want DSLP 0x%02x", last, cmdDSLP)
	}
}

func TestWriteImage_WrongIndexCount(t *testing.T) {
	profile := Profile{Width: 2, Height: 2, PaletteSize: 6, BitsPerColor: 3}
	c := New(&fakeTransport{}, profile)

	err := c.WriteImage(context.Background(), []uint8{0, 1})
	if err == nil {
		t.Fatal("expected error for mismatched index count")
	}
}

func TestRemapIndex_SkipsCode4(t *testing.T) {
	cases := map[uint8]byte{0: 0, 1: 1, 2: 2, 3: 3, 4: 5, 5: 6}
	for in, want := range cases {
		if got := remapIndex(in); got != want {
			t.Errorf("remapIndex(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRemapIndex_ClampsOutOfRange(t *testing.T) {
	if got := remapIndex(9); got != 6 {
		t.Errorf("remapIndex(9) = %d, want 6 (clamped to 5, then remapped)", got)
	}
}

func TestWriteImage_PacksTwoIndicesPerByte(t *testing.T) {
	profile := Profile{Width: 2, Height: 1, PaletteSize: 6, BitsPerColor: 3}
	transport := &fakeTransport{}
	c := New(transport, profile)

	if err := c.WriteImage(context.Background(), []uint8{1, 5}); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	var imageData []byte
	for i, ev := range transport.events {
		if ev.isCommand && ev.cmd == cmdDTM && i+1 < len(transport.events) {
			imageData = transport.events[i+1].data
			break
		}
	}
	if len(imageData) == 0 {
		t.Fatal("no image data found after DTM command")
	}
	want := byte(1<<4 | 6)
	if imageData[0] != want {
		t.Errorf("packed byte = 0x%02x, want 0x%02x", imageData[0], want)
	}
}

func TestWaitBusy_ContextCancellation(t *testing.T) {
	transport := &fakeTransport{busyAt: []bool{true, true, true, true, true, true, true, true, true, true}}
	c := New(transport, Profile{Width: 1, Height: 1, PaletteSize: 2, BitsPerColor: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.waitBusy(ctx, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
