package hashsession

import "fmt"

// Handle is an opaque reference to one session. Callers must not interpret
// its bits; the zero value is the null handle.
type Handle uint64

// NullHandle is the failure sentinel returned by Create.
const NullHandle Handle = 0

// A handle packs the slot generation in the high 32 bits and the slot
// index plus one in the low 32 bits, so the low word is never zero for a
// handle that was actually issued.
func makeHandle(index int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

// split decodes h. ok is false for the null handle and for any value whose
// low word is zero.
func (h Handle) split() (index int, gen uint32, ok bool) {
	low := uint32(h)
	if low == 0 {
		return 0, 0, false
	}
	return int(low - 1), uint32(h >> 32), true
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == NullHandle
}

// String returns the handle in hexadecimal.
func (h Handle) String() string {
	return fmt.Sprintf("0x%016x", uint64(h))
}
