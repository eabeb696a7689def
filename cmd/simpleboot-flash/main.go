// Command simpleboot-flash is the host-side counterpart to the
// on-target bootloader: it inspects firmware images and drives a
// YMODEM transfer over a real serial port to a device waiting in
// update mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	hwserial "go.bug.st/serial"

	"github.com/lingzolabs/simpleboot/board/rp2040"
	"github.com/lingzolabs/simpleboot/board/stm32f1"
	"github.com/lingzolabs/simpleboot/boot"
	"github.com/lingzolabs/simpleboot/crc"
	"github.com/lingzolabs/simpleboot/firmware"
	"github.com/lingzolabs/simpleboot/serial"
	"github.com/lingzolabs/simpleboot/ymodem"
)

const (
	defaultBaud   = 115200
	sendTimeout   = 60 * time.Second
	headerWaitFor = 30 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "send":
		err = runSend(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("simpleboot-flash - host tool for the simpleboot update agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  simpleboot-flash info [-board <rp2040|stm32f1>] <firmware.bin>")
	fmt.Println("  simpleboot-flash verify -port <device> <firmware.bin>")
	fmt.Println("  simpleboot-flash send -port <device> [-baud <rate>] <firmware.bin>")
}

// runInfo reports the size and CRC-32 a device would compute for the
// image, without needing a device attached. With -board it also runs
// the stack-pointer/reset-vector structural check locally, as a
// pre-flight sanity check before spending time on a transfer.
func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	board := fs.String("board", "", "also validate against this board's layout (rp2040|stm32f1)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: simpleboot-flash info [-board <rp2040|stm32f1>] <firmware.bin>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read firmware: %w", err)
	}

	sum := crc.UpdateIEEE(0xFFFFFFFF, data)
	fmt.Printf("File:  %s\n", fs.Arg(0))
	fmt.Printf("Size:  %d bytes\n", len(data))
	fmt.Printf("CRC32: %#08x\n", sum)

	if *board == "" {
		return nil
	}
	layout, err := boardLayout(*board)
	if err != nil {
		return err
	}
	if err := boot.ValidateImageBytes(data, layout); err != nil {
		return fmt.Errorf("image rejected for %s: %w", *board, err)
	}
	fmt.Printf("Valid for %s (stack pointer and reset vector check out)\n", *board)
	return nil
}

// runVerify opens the serial port and waits for the receiver's
// initial 'C' prompt, without sending a header or any data — a quick
// check that a bootloader is listening on the other end, for bench
// smoke tests.
func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	portName := fs.String("port", "", "serial device, e.g. /dev/ttyACM0")
	baud := fs.Int("baud", defaultBaud, "baud rate")
	fs.Parse(args)
	if *portName == "" || fs.NArg() != 1 {
		return fmt.Errorf("usage: simpleboot-flash verify -port <device> <firmware.bin>")
	}

	port, err := hwserial.Open(*portName, &hwserial.Mode{BaudRate: *baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", *portName, err)
	}
	defer port.Close()

	sender := ymodem.NewSender(&hostPort{port: port})

	fmt.Printf("Waiting for device on %s...\n", *portName)
	ctx, cancel := context.WithTimeout(context.Background(), headerWaitFor)
	defer cancel()
	if err := sender.Start(ctx); err != nil {
		return fmt.Errorf("no bootloader listening: %w", err)
	}

	fmt.Printf("%s: bootloader listening on %s, ready to receive\n", fs.Arg(0), *portName)
	return nil
}

// runSend transmits a firmware file over a real serial port using
// YMODEM-1K/CRC, waiting for the device to request it first.
func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	portName := fs.String("port", "", "serial device, e.g. /dev/ttyACM0")
	baud := fs.Int("baud", defaultBaud, "baud rate")
	fs.Parse(args)
	if *portName == "" || fs.NArg() != 1 {
		return fmt.Errorf("usage: simpleboot-flash send -port <device> <firmware.bin>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read firmware: %w", err)
	}

	port, err := hwserial.Open(*portName, &hwserial.Mode{BaudRate: *baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", *portName, err)
	}
	defer port.Close()

	adapter := &hostPort{port: port}
	sender := ymodem.NewSender(adapter)

	fmt.Printf("Waiting for device on %s...\n", *portName)
	waitCtx, cancel := context.WithTimeout(context.Background(), headerWaitFor)
	defer cancel()
	if err := sender.Start(waitCtx); err != nil {
		return fmt.Errorf("device never requested a transfer: %w", err)
	}

	fmt.Printf("Sending %s (%d bytes)...\n", fs.Arg(0), len(data))
	sendCtx, cancelSend := context.WithTimeout(context.Background(), sendTimeout)
	defer cancelSend()
	stats, err := sender.SendFile(sendCtx, filepath.Base(fs.Arg(0)), data)
	if err != nil {
		return fmt.Errorf("transfer failed after %d packets: %w", stats.Packets, err)
	}

	fmt.Printf("Done: %d packets, %d bytes, %d retries\n", stats.Packets, stats.Bytes, stats.Retries)
	return nil
}

func boardLayout(name string) (boot.Layout, error) {
	switch name {
	case "rp2040":
		return rp2040.Layout, nil
	case "stm32f1":
		return stm32f1.Layout, nil
	default:
		return boot.Layout{}, fmt.Errorf("unknown board %q", name)
	}
}

// hostPort adapts a go.bug.st/serial.Port to the serial.Port interface
// ymodem and boot are written against, so the same Sender code that
// runs against serial.Loopback in tests drives a real UART here.
type hostPort struct {
	port hwserial.Port
}

func (h *hostPort) RecvByte(timeout time.Duration) (byte, error) {
	if err := h.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}
	var buf [1]byte
	n, err := h.port.Read(buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, serial.ErrTimeout
	}
	return buf[0], nil
}

func (h *hostPort) SendByte(b byte) error {
	_, err := h.port.Write([]byte{b})
	return err
}

func (h *hostPort) FlushInput() {
	serial.Flush(h)
}
