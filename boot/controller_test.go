package boot

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/lingzolabs/simpleboot/diag"
	"github.com/lingzolabs/simpleboot/flash"
	"github.com/lingzolabs/simpleboot/serial"
	"github.com/lingzolabs/simpleboot/ymodem"
)

// validAppImage builds a well-formed application blob: the 8-byte
// stack-pointer/reset-vector header writeValidImage programs directly,
// followed by size-8 bytes of filler, so an update transferred over
// the wire passes ValidateImage the same way a pre-programmed one
// does.
func validAppImage(size int) []byte {
	buf := make([]byte, size)
	buf[0], buf[1], buf[2], buf[3] = 0x00, 0x10, 0x00, 0x20 // SP = 0x20001000
	buf[4], buf[5], buf[6], buf[7] = 0x01, 0x40, 0x00, 0x08 // reset vector, thumb bit set
	return buf
}

// runUpdateOverLoopback drives ctrl.Run against a simulated host
// sending data via a background goroutine, returning once Run
// returns.
func runUpdateOverLoopback(t *testing.T, ctrl *Controller, data []byte) (Outcome, error) {
	t.Helper()

	target, host := serial.NewLoopbackPair()
	ctrl.Port = target

	sendErr := make(chan error, 1)
	go func() {
		ctx := context.Background()
		sender := ymodem.NewSender(host)
		if err := sender.Start(ctx); err != nil {
			sendErr <- err
			return
		}
		_, err := sender.SendFile(ctx, "app.bin", data)
		sendErr <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcome, err := ctrl.Run(ctx)

	if serr := <-sendErr; serr != nil {
		t.Fatalf("sender: %v", serr)
	}
	return outcome, err
}

func newTestController() (*Controller, *flash.Sim) {
	l := testLayout()
	sim := flash.NewSim(l.FlashBase, l.FlashEnd-l.FlashBase+1, l.PageSize)
	ctrl := &Controller{
		Layout: l,
		Flash:  sim,
		Entry:  &memEntryCell{},
		Log:    diag.New(io.Discard),
	}
	return ctrl, sim
}

func TestControllerJumpsToAppWhenImageValid(t *testing.T) {
	l := testLayout()
	sim := writeValidImage(t, l, make([]byte, 100))

	ctrl := &Controller{
		Layout: l,
		Flash:  sim,
		Entry:  &memEntryCell{},
		Log:    diag.New(io.Discard),
		Port:   &serial.ByteFeeder{},
	}

	outcome, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeJumpToApp {
		t.Fatalf("outcome = %v, want OutcomeJumpToApp", outcome)
	}
}

func TestControllerRunsUpdateWhenNoValidImageInstalled(t *testing.T) {
	ctrl, sim := newTestController()
	data := validAppImage(300)

	outcome, err := runUpdateOverLoopback(t, ctrl, data)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeJumpToApp {
		t.Fatalf("outcome = %v, want OutcomeJumpToApp", outcome)
	}

	got, rerr := sim.ReadAt(ctrl.Layout.AppStart, uint32(len(data)))
	if rerr != nil {
		t.Fatalf("ReadAt: %v", rerr)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("flash byte %d = %#02x, want %#02x", i, got[i], data[i])
		}
	}

	if !ValidateImage(sim, ctrl.Layout) {
		t.Fatalf("expected the freshly written image to validate")
	}
}

func TestControllerEntersUpdateModeOnButtonHeldEvenWithValidImage(t *testing.T) {
	l := testLayout()
	sim := writeValidImage(t, l, make([]byte, 100))

	ctrl := &Controller{
		Layout:     l,
		Flash:      sim,
		Entry:      &memEntryCell{},
		Log:        diag.New(io.Discard),
		ButtonDown: func() bool { return true },
	}

	newData := validAppImage(150)
	outcome, err := runUpdateOverLoopback(t, ctrl, newData)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeJumpToApp {
		t.Fatalf("outcome = %v, want OutcomeJumpToApp", outcome)
	}

	got, rerr := sim.ReadAt(l.AppStart, uint32(len(newData)))
	if rerr != nil {
		t.Fatalf("ReadAt: %v", rerr)
	}
	for i := range newData {
		if got[i] != newData[i] {
			t.Fatalf("flash was not overwritten by the forced update at byte %d", i)
		}
	}
}

func TestControllerEntersUpdateModeOnEntryMagicAndClearsIt(t *testing.T) {
	ctrl, _ := newTestController()
	entry := &memEntryCell{value: EntryMagic}
	ctrl.Entry = entry

	data := validAppImage(120)
	outcome, err := runUpdateOverLoopback(t, ctrl, data)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeJumpToApp {
		t.Fatalf("outcome = %v, want OutcomeJumpToApp", outcome)
	}
	if entry.value != 0 {
		t.Fatalf("entry cell was not cleared after being consumed")
	}
}

func TestControllerReportsFailureWhenNoFirmwareArrives(t *testing.T) {
	ctrl, _ := newTestController()
	ctrl.Port = &serial.ByteFeeder{}

	outcome, err := ctrl.Run(context.Background())
	if err == nil {
		t.Fatalf("expected an error when no header ever arrives")
	}
	if outcome != OutcomeAwaitingFirmware {
		t.Fatalf("outcome = %v, want OutcomeAwaitingFirmware", outcome)
	}
}

func TestControllerResetsAfterSixConsecutiveFailures(t *testing.T) {
	ctrl, _ := newTestController()
	ctrl.Port = &serial.ByteFeeder{}

	resets := 0
	ctrl.Reset = func() { resets++ }

	for i := 0; i < 6; i++ {
		if _, err := ctrl.Run(context.Background()); err == nil {
			t.Fatalf("run %d: expected failure with an empty port", i)
		}
		if i < 5 && resets != 0 {
			t.Fatalf("run %d: Reset fired too early (count=%d)", i, resets)
		}
	}
	if resets != 1 {
		t.Fatalf("resets = %d, want exactly 1 after the 6th consecutive failure", resets)
	}
}
