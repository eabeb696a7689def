package flash

import "testing"

func TestSimStartsErased(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	for i, b := range s.Bytes() {
		if b != 0xFF {
			t.Fatalf("byte %d = %#02x, want 0xFF", i, b)
		}
	}
}

func TestSimProgramRequiresUnlock(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	if err := s.ProgramHalfword(0x1000, 0x1234); err != ErrLocked {
		t.Fatalf("ProgramHalfword while locked = %v, want ErrLocked", err)
	}
	if err := s.EraseRange(0x1000, 64); err != ErrLocked {
		t.Fatalf("EraseRange while locked = %v, want ErrLocked", err)
	}
}

func TestSimProgramAndReadBack(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	if err := s.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	defer s.Lock()

	if err := s.ProgramHalfword(0x1000, 0xBEEF); err != nil {
		t.Fatalf("ProgramHalfword: %v", err)
	}
	got, err := s.ReadAt(0x1000, 2)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if got[0] != 0xEF || got[1] != 0xBE {
		t.Fatalf("flash bytes = %#02x %#02x, want EF BE (little-endian 0xBEEF)", got[0], got[1])
	}
}

func TestSimProgramOverNonErasedFails(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	s.Unlock()
	defer s.Lock()

	if err := s.ProgramHalfword(0x1000, 0x00FF); err != nil {
		t.Fatalf("first ProgramHalfword: %v", err)
	}
	// Writing a value that would need to set a bit flash can only
	// clear post-erase must surface as a verify failure.
	if err := s.ProgramHalfword(0x1000, 0xFF00); err != ErrVerifyFailed {
		t.Fatalf("second ProgramHalfword = %v, want ErrVerifyFailed", err)
	}
}

func TestSimEraseRangeRoundsUpToWholePages(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	s.Unlock()
	defer s.Lock()

	// Program a half-word later in the first page, then erase a range
	// that only nominally covers the first page's first byte.
	if err := s.ProgramHalfword(0x1020, 0x0000); err != nil {
		t.Fatalf("ProgramHalfword: %v", err)
	}
	if err := s.EraseRange(0x1000, 1); err != nil {
		t.Fatalf("EraseRange: %v", err)
	}
	got, err := s.ReadAt(0x1020, 2)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if got[0] != 0xFF || got[1] != 0xFF {
		t.Fatalf("page 1 bytes past the nominal 1-byte range = %#02x %#02x, want erased", got[0], got[1])
	}
}

func TestSimProgramUnalignedAddressRejected(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	s.Unlock()
	defer s.Lock()
	if err := s.ProgramHalfword(0x1001, 0x1234); err != ErrRange {
		t.Fatalf("ProgramHalfword at odd address = %v, want ErrRange", err)
	}
}

func TestSimOutOfRangeRejected(t *testing.T) {
	s := NewSim(0x1000, 256, 64)
	s.Unlock()
	defer s.Lock()
	if err := s.ProgramHalfword(0x900, 0x1234); err != ErrRange {
		t.Fatalf("ProgramHalfword below base = %v, want ErrRange", err)
	}
	if err := s.ProgramHalfword(0x1100, 0x1234); err != ErrRange {
		t.Fatalf("ProgramHalfword past end = %v, want ErrRange", err)
	}
}
