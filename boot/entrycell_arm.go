//go:build tinygo

package boot

import "unsafe"

// ramEntryCell reads and clears the EntryMagic word directly at a
// fixed RAM address via an unsafe.Pointer, in the idiom bare-metal Go
// code uses for raw register/memory access when there is no
// peripheral driver package for it (this address isn't a peripheral
// register, just a reserved RAM word the application and bootloader
// agree on).
type ramEntryCell struct {
	addr uintptr
}

// NewRAMEntryCell returns an EntryCell backed by the RAM word at addr.
func NewRAMEntryCell(addr uint32) EntryCell {
	return &ramEntryCell{addr: uintptr(addr)}
}

func (c *ramEntryCell) Read() uint32 {
	return *(*uint32)(unsafe.Pointer(c.addr))
}

func (c *ramEntryCell) Clear() {
	*(*uint32)(unsafe.Pointer(c.addr)) = 0
}
