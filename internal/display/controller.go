// Package display drives an e-paper controller: a fixed initialization
// command sequence, 4-bit-per-pixel image transfer, and the
// power-on/refresh/power-off/deep-sleep shutdown sequence. The physical
// GPIO/SPI access is abstracted behind Transport so the protocol itself
// can be exercised without hardware.
package display

import (
	"context"
	"fmt"
	"time"

	"github.com/AnyUserName/encre/internal/encreerr"
)

// Transport is the physical link to the controller: command/data framing
// over SPI with a data/command select line, plus the busy-signal line used
// to throttle long-running operations.
type Transport interface {
	// SendCommand writes a single command byte with DC held low.
	SendCommand(cmd byte) error
	// SendData writes a payload with DC held high.
	SendData(data []byte) error
	// Busy reports the current level of the BUSY line.
	Busy() (bool, error)
	// Reset pulses the controller's reset line.
	Reset() error
}

// Profile describes a controller model's fixed geometry.
type Profile struct {
	Width, Height int
	PaletteSize   int
	BitsPerColor  int
}

// GDEP073E01 is the Waveshare 7.3" ACeP panel profile.
var GDEP073E01 = Profile{Width: 800, Height: 480, PaletteSize: 6, BitsPerColor: 3}

const (
	cmdPSR   = 0x00
	cmdPWR   = 0x01
	cmdPOF   = 0x02
	cmdPOFS  = 0x03
	cmdPON   = 0x04
	cmdBTST1 = 0x05
	cmdBTST2 = 0x06
	cmdDSLP  = 0x07
	cmdBTST3 = 0x08
	cmdDTM   = 0x10
	cmdDRF   = 0x12
	cmdIPC   = 0x13
	cmdPLL   = 0x30
	cmdTSE   = 0x41
	cmdCDI   = 0x50
	cmdTCON  = 0x60
	cmdTRES  = 0x61
	cmdVDCS  = 0x82
	cmdTVDCS = 0x84
	cmdAGID  = 0x86
	cmdCMDH  = 0xAA
	cmdCCSET = 0xE0
	cmdPWS   = 0xE3
	cmdTSSET = 0xE6
)

// busyPollInterval is how often the busy line is polled while waiting for
// it to deassert.
const busyPollInterval = 10 * time.Millisecond

// Controller drives a Transport through a fixed GDEP073E01-style
// initialization and image-write sequence.
type Controller struct {
	transport Transport
	profile   Profile
}

// New wraps transport for the given controller profile.
func New(transport Transport, profile Profile) *Controller {
	return &Controller{transport: transport, profile: profile}
}

// WriteImage runs the full display cycle: reset and initialize, transfer
// indices (one per pixel, row-major), power on, refresh, power off, and
// deep sleep. indices must have profile.Width*profile.Height entries; each
// is clamped to [0, 5] and remapped to the controller's color code before
// transfer.
func (c *Controller) WriteImage(ctx context.Context, indices []uint8) error {
	if len(indices) != c.profile.Width*c.profile.Height {
		return encreerr.ErrInvalidInput
	}

	if err := c.initialize(ctx); err != nil {
		return err
	}

	if err := c.transport.SendCommand(cmdDTM); err != nil {
		return fmt.Errorf("display: send DTM: %w", err)
	}
	if err := c.sendImage(indices); err != nil {
		return err
	}

	if err := c.transport.SendCommand(cmdPON); err != nil {
		return fmt.Errorf("display: send PON: %w", err)
	}
	if err := c.waitBusy(ctx, 400*time.Millisecond); err != nil {
		return err
	}

	if err := c.sendCommandWithData(cmdDRF, 0x00); err != nil {
		return err
	}
	if err := c.waitBusy(ctx, 45*time.Second); err != nil {
		return err
	}

	if err := c.sendCommandWithData(cmdPOF, 0x00); err != nil {
		return err
	}
	if err := c.waitBusy(ctx, 400*time.Millisecond); err != nil {
		return err
	}

	return c.sendCommandWithData(cmdDSLP, 0xA5)
}

// initialize runs the reset pulse and the fixed scripted command/data
// sequence that configures panel timing, power, and temperature sensing.
// Every opcode and payload byte here is constant per device model.
func (c *Controller) initialize(ctx context.Context) error {
	if err := c.transport.Reset(); err != nil {
		return fmt.Errorf("display: reset: %w", err)
	}
	if err := c.waitBusy(ctx, time.Second); err != nil {
		return err
	}

	steps := []struct {
		cmd  byte
		data []byte
	}{
		{cmdCMDH, []byte{0x49, 0x55, 0x20, 0x08, 0x09, 0x18}},
		{cmdPWR, []byte{0x3F, 0x00, 0x32, 0x2A, 0x0E, 0x2A}},
		{cmdPSR, []byte{0x5F, 0x69}},
		{cmdPOFS, []byte{0x00, 0x54, 0x00, 0x44}},
		{cmdBTST1, []byte{0x40, 0x1F, 0x1F, 0x2C}},
		{cmdBTST2, []byte{0x6F, 0x1F, 0x16, 0x25}},
		{cmdBTST3, []byte{0x6F, 0x1F, 0x1F, 0x22}},
		{cmdIPC, []byte{0x00, 0x04}},
		{cmdPLL, []byte{0x02}},
		{cmdTSE, []byte{0x00}},
		{cmdCDI, []byte{0x3F}},
		{cmdTCON, []byte{0x02, 0x00}},
		{cmdTRES, []byte{0x03, 0x20, 0x01, 0xE0}},
		{cmdVDCS, []byte{0x1E}},
		{cmdTVDCS, []byte{0x01}},
		{cmdAGID, []byte{0x00}},
		{cmdPWS, []byte{0x2F}},
		{cmdCCSET, []byte{0x00}},
		{cmdTSSET, []byte{0x00}},
	}

	for _, step := range steps {
		if err := c.sendCommandWithData(step.cmd, step.data...); err != nil {
			return err
		}
	}
	return nil
}

// sendImage remaps each dithered palette index to the controller's color
// code and packs two codes per byte, high nibble first.
func (c *Controller) sendImage(indices []uint8) error {
	const chunkSize = 4096
	buf := make([]byte, 0, chunkSize)

	var pending byte
	for i, idx := range indices {
		code := remapIndex(idx)
		if i&1 == 0 {
			pending = code << 4
			continue
		}
		buf = append(buf, pending|code)
		if len(buf) == chunkSize {
			if err := c.transport.SendData(buf); err != nil {
				return fmt.Errorf("display: send image data: %w", err)
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		if err := c.transport.SendData(buf); err != nil {
			return fmt.Errorf("display: send image data: %w", err)
		}
	}
	return nil
}

// remapIndex converts a dithered palette index (0..5) into the
// controller's 4-bit color code; the controller has no code 4, so indices
// at or above it shift up by one.
func remapIndex(index uint8) byte {
	if index > 5 {
		index = 5
	}
	if index >= 4 {
		return index + 1
	}
	return index
}

func (c *Controller) sendCommandWithData(cmd byte, data ...byte) error {
	if err := c.transport.SendCommand(cmd); err != nil {
		return fmt.Errorf("display: send command 0x%02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := c.transport.SendData(data); err != nil {
		return fmt.Errorf("display: send data for command 0x%02x: %w", cmd, err)
	}
	return nil
}

// waitBusy polls the busy line until it deasserts or timeout elapses.
func (c *Controller) waitBusy(ctx context.Context, timeout time.Duration) error {
	busy, err := c.transport.Busy()
	if err != nil {
		return fmt.Errorf("display: read busy line: %w", err)
	}
	if !busy {
		return nil
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(busyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			busy, err := c.transport.Busy()
			if err != nil {
				return fmt.Errorf("display: read busy line: %w", err)
			}
			if !busy {
				return nil
			}
			if time.Now().After(deadline) {
				return nil
			}
		}
	}
}
