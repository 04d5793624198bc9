package physics

import "iter"

const arenaBlockSize = 64

type slot struct {
	generation uint32
	filled     bool
	body       *body
}

// arena stores bodies in fixed-size blocks of slots. Slot pointers are only valid until
// the next insert. Freed slots are recycled; every reuse bumps the slot generation so
// handles issued for the previous occupant no longer resolve.
type arena struct {
	blocks    [][arenaBlockSize]slot
	freeSlots []int
	nextIndex int
	count     int
}

// insert stores b and returns its handle.
func (a *arena) insert(b *body) Handle {
	var index int
	if len(a.freeSlots) > 0 {
		index = a.freeSlots[len(a.freeSlots)-1]
		a.freeSlots = a.freeSlots[:len(a.freeSlots)-1]
	} else {
		index = a.nextIndex
		a.nextIndex++
		if index/arenaBlockSize >= len(a.blocks) {
			a.blocks = append(a.blocks, [arenaBlockSize]slot{})
		}
	}

	s := a.slot(index)
	s.generation++
	s.filled = true
	s.body = b
	a.count++

	return newHandle(s.generation, uint32(index))
}

// get resolves h, failing if the slot is empty or holds a newer generation.
func (a *arena) get(h Handle) (*body, bool) {
	index := int(h.Index())
	if h.IsZero() || index >= a.nextIndex {
		return nil, false
	}

	s := a.slot(index)
	if !s.filled || s.generation != h.Generation() {
		return nil, false
	}
	return s.body, true
}

// remove empties the slot named by h. It reports false for stale handles.
func (a *arena) remove(h Handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}

	index := int(h.Index())
	s := a.slot(index)
	s.filled = false
	s.body = nil
	a.freeSlots = append(a.freeSlots, index)
	a.count--
	return true
}

func (a *arena) len() int {
	return a.count
}

func (a *arena) slot(index int) *slot {
	return &a.blocks[index/arenaBlockSize][index%arenaBlockSize]
}

// all iterates live bodies in slot order.
func (a *arena) all() iter.Seq2[Handle, *body] {
	return func(yield func(Handle, *body) bool) {
		for i := 0; i < a.nextIndex; i++ {
			s := a.slot(i)
			if !s.filled {
				continue
			}
			if !yield(newHandle(s.generation, uint32(i)), s.body) {
				return
			}
		}
	}
}
