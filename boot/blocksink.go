package boot

import (
	"github.com/lingzolabs/simpleboot/crc"
	"github.com/lingzolabs/simpleboot/flash"
)

// blockSink is the concrete ymodem.BlockSink the controller installs
// for the data phase: it writes each packet's payload to flash at the
// next free address, pads an odd trailing byte's high half-word with
// 0xFF (matching an erased cell, so a later re-program of that byte
// pair doesn't need a second erase), and folds exactly the payload
// bytes — never the padding — into the running CRC-32.
type blockSink struct {
	drv     flash.Driver
	addr    uint32
	written uint32
	crc     *crc.RunningIEEE
	onPage  func()
}

func newBlockSink(drv flash.Driver, startAddr uint32, onPage func()) *blockSink {
	return &blockSink{
		drv:    drv,
		addr:   startAddr,
		crc:    crc.NewRunningIEEE(),
		onPage: onPage,
	}
}

func (s *blockSink) WriteBlock(seq uint8, data []byte) error {
	s.crc.Write(data)

	for i := 0; i < len(data); i += 2 {
		lo := data[i]
		hi := byte(0xFF)
		if i+1 < len(data) {
			hi = data[i+1]
		}
		value := uint16(lo) | uint16(hi)<<8
		if err := s.drv.ProgramHalfword(s.addr, value); err != nil {
			return err
		}
		s.addr += 2
		if s.onPage != nil && (s.addr%s.drv.PageSize()) == 0 {
			s.onPage()
		}
	}

	s.written += uint32(len(data))
	return nil
}
