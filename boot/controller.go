package boot

import (
	"context"
	"errors"

	"github.com/lingzolabs/simpleboot/diag"
	"github.com/lingzolabs/simpleboot/firmware"
	"github.com/lingzolabs/simpleboot/flash"
	"github.com/lingzolabs/simpleboot/serial"
	"github.com/lingzolabs/simpleboot/ymodem"
)

// Outcome is what Controller.Run decided to do, reported to the
// caller (normally main) so it can act on JumpToApp by invoking
// Handover.
type Outcome uint8

const (
	// OutcomeJumpToApp means a valid application image is installed
	// and the caller should hand over execution to it.
	OutcomeJumpToApp Outcome = iota
	// OutcomeAwaitingFirmware means an update cycle ran and failed (no
	// header arrived, the transfer aborted, or a flash or verify step
	// failed); Run returns it together with the error. The caller
	// should loop, calling Run again, which starts a fresh cycle.
	OutcomeAwaitingFirmware
)

// FlashDriver is what Controller needs from flash: flash.Driver to
// erase and program, plus flash.Reader to validate and verify the
// installed image. Sim and both board adapters implement both.
type FlashDriver interface {
	flash.Driver
	flash.Reader
}

// EntryCell abstracts the one RAM word the controller reads to learn
// whether application code asked to re-enter update mode, and clears
// on detection. The real implementation is a tiny unsafe.Pointer
// wrapper over a fixed address; tests use an in-memory one.
type EntryCell interface {
	Read() uint32
	Clear()
}

// Controller runs the entry decision and, when firmware is needed,
// the full receive/erase/program/verify sequence.
type Controller struct {
	Layout     Layout
	Port       serial.Port
	Flash      FlashDriver
	Entry      EntryCell
	Log        *diag.Logger
	ButtonDown func() bool
	OnPage     func()
	Reset      func()

	errorCount int
}

// Run executes one pass of the bootloader's state machine: the entry
// decision, and if firmware is needed, the whole receive-through-
// verify sequence. Callers loop on OutcomeAwaitingFirmware.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	if c.shouldEnterUpdateMode() {
		return c.runUpdateSequence(ctx)
	}

	if ValidateImage(c.Flash, c.Layout) {
		return OutcomeJumpToApp, nil
	}
	c.Log.Info("no valid application installed, waiting for firmware")
	return c.runUpdateSequence(ctx)
}

// shouldEnterUpdateMode implements the unchanged entry decision:
// button held, then the RAM magic cell. The third condition, an
// invalid installed image, is checked by Run itself.
func (c *Controller) shouldEnterUpdateMode() bool {
	if c.ButtonDown != nil && c.ButtonDown() {
		c.Log.Info("entry: button held at reset")
		return true
	}
	if c.Entry != nil && c.Entry.Read() == EntryMagic {
		c.Entry.Clear()
		c.Log.Info("entry: RAM magic cell set")
		return true
	}
	return false
}

func (c *Controller) runUpdateSequence(ctx context.Context) (Outcome, error) {
	c.Log.Info("awaiting firmware over serial")

	receiver := ymodem.New(c.Port)

	info, err := receiver.AwaitHeader(ctx, 10)
	if err != nil {
		return c.fail(err)
	}
	if info.FileSize == 0 {
		return c.fail(errors.New("boot: empty firmware image"))
	}

	if err := c.Flash.Unlock(); err != nil {
		return c.fail(err)
	}
	defer c.Flash.Lock()

	if err := c.Flash.EraseRange(c.Layout.MetaAddr, c.Layout.EraseLen()); err != nil {
		return c.fail(err)
	}

	sink := newBlockSink(c.Flash, c.Layout.AppStart, c.OnPage)

	c.Log.Pause()
	result, recvErr := receiver.ReceiveFile(ctx, &info, sink)
	c.Log.Resume()

	if recvErr != nil || result != ymodem.ResultOK {
		if recvErr == nil {
			recvErr = errors.New("boot: transfer did not complete")
		}
		return c.fail(recvErr)
	}

	meta := firmware.Metadata{
		Magic:   firmware.Magic,
		Version: 0,
		Size:    sink.written,
		CRC32:   sink.crc.Sum(),
	}
	if err := c.programMetadata(meta); err != nil {
		return c.fail(err)
	}

	if err := VerifyImage(c.Flash, c.Layout); err != nil {
		return c.fail(err)
	}

	c.errorCount = 0
	c.Log.Info("firmware update complete", "bytes", meta.Size, "crc32", meta.CRC32)
	return OutcomeJumpToApp, nil
}

func (c *Controller) programMetadata(m firmware.Metadata) error {
	b := m.Encode()
	for i := 0; i < len(b); i += 2 {
		value := uint16(b[i]) | uint16(b[i+1])<<8
		if err := c.Flash.ProgramHalfword(c.Layout.MetaAddr+uint32(i), value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) fail(err error) (Outcome, error) {
	c.errorCount++
	c.Log.Error("update cycle failed", "error", err, "consecutive_failures", c.errorCount)
	if c.errorCount > 5 && c.Reset != nil {
		c.Reset()
	}
	return OutcomeAwaitingFirmware, err
}
