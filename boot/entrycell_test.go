package boot

// memEntryCell is a host-testable EntryCell backed by a plain Go
// variable instead of a fixed hardware address, used by Controller
// tests.
type memEntryCell struct {
	value uint32
}

func (c *memEntryCell) Read() uint32 { return c.value }
func (c *memEntryCell) Clear()       { c.value = 0 }
