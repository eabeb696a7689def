package crc

import "testing"

func TestUpdateIEEEKnownVector(t *testing.T) {
	// "123456789" is the standard CRC-32/IEEE check vector. UpdateIEEE
	// complements its seed on entry, so the standard 0xFFFFFFFF register
	// start corresponds to a seed of 0.
	got := UpdateIEEE(0, []byte("123456789"))
	const want = 0xCBF43926
	if got != want {
		t.Fatalf("UpdateIEEE(0, \"123456789\") = %#08x, want %#08x", got, want)
	}
}

func TestUpdateIEEEIncremental(t *testing.T) {
	data := make([]byte, 513)
	for i := range data {
		data[i] = byte(i * 31)
	}
	whole := UpdateIEEE(0xFFFFFFFF, data)

	for _, split := range []int{0, 1, 128, 256, 512, 513} {
		chained := UpdateIEEE(UpdateIEEE(0xFFFFFFFF, data[:split]), data[split:])
		if chained != whole {
			t.Fatalf("split at %d: chained = %#08x, whole = %#08x", split, chained, whole)
		}
	}
}

func TestRunningIEEEMatchesSingleShot(t *testing.T) {
	data := make([]byte, 1024+37)
	for i := range data {
		data[i] = byte(i ^ (i >> 3))
	}

	want := UpdateIEEE(0xFFFFFFFF, data)

	r := NewRunningIEEE()
	chunks := [][]byte{data[:1024], data[1024:1024+20], data[1024+20:]}
	for _, c := range chunks {
		r.Write(c)
	}
	if got := r.Sum(); got != want {
		t.Fatalf("RunningIEEE.Sum() = %#08x, want %#08x", got, want)
	}
}

func TestRunningIEEENoWritesIsNeutral(t *testing.T) {
	r := NewRunningIEEE()
	if got, want := r.Sum(), UpdateIEEE(0xFFFFFFFF, nil); got != want {
		t.Fatalf("RunningIEEE with no writes = %#08x, want %#08x", got, want)
	}
}
