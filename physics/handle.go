package physics

import "fmt"

// Handle identifies a body in a World. The upper 32 bits hold the slot generation,
// the lower 32 bits the slot index. Generations start at 1, so the zero Handle never
// names a body and can be used as "none".
type Handle uint64

func newHandle(generation uint32, index uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the slot generation from the handle
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// Index extracts the slot index from the handle
func (h Handle) Index() uint32 {
	return uint32(h & 0xFFFFFFFF)
}

// IsZero reports whether h is the "no body" handle.
func (h Handle) IsZero() bool {
	return h == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "body(none)"
	}
	return fmt.Sprintf("body(%d@%d)", h.Index(), h.Generation())
}
