// Package firmware encodes and decodes the fixed-size metadata record
// the update controller writes after a successful transfer and reads
// back on every boot to decide whether an installed image exists.
package firmware

import (
	"encoding/binary"
	"errors"
)

// Magic identifies a valid metadata record: the ASCII bytes "BOOT"
// read as a big-endian uint32. Encode stores it little-endian, so the
// bytes on flash are 54 4F 4F 42.
const Magic = 0x424F4F54

// Size is the on-flash record length in bytes.
const Size = 16

// ErrShort is returned by Decode when given fewer than Size bytes.
var ErrShort = errors.New("firmware: metadata buffer too short")

// Metadata is the 16-byte record stored at a board's META_ADDR,
// immediately below APP_START.
type Metadata struct {
	Magic   uint32
	Version uint32
	Size    uint32
	CRC32   uint32
}

// Decode parses a metadata record from the first Size bytes of b.
func Decode(b []byte) (Metadata, error) {
	if len(b) < Size {
		return Metadata{}, ErrShort
	}
	return Metadata{
		Magic:   binary.LittleEndian.Uint32(b[0:4]),
		Version: binary.LittleEndian.Uint32(b[4:8]),
		Size:    binary.LittleEndian.Uint32(b[8:12]),
		CRC32:   binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// Encode serializes m into its on-flash little-endian layout.
func (m Metadata) Encode() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint32(b[0:4], m.Magic)
	binary.LittleEndian.PutUint32(b[4:8], m.Version)
	binary.LittleEndian.PutUint32(b[8:12], m.Size)
	binary.LittleEndian.PutUint32(b[12:16], m.CRC32)
	return b
}

// Valid reports whether the record's magic matches. It does not
// check Size or CRC32 against actual flash contents — that full
// cross-check lives in the boot package's VerifyImage, which also
// needs the flash driver.
func (m Metadata) Valid() bool {
	return m.Magic == Magic
}
