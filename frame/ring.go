package frame

import "fmt"

// Ring is a fixed-size circular collection of frame slots. Each tick the
// cursor advances by exactly one position; reclaiming a slot whose prior
// submission has not retired blocks the caller on the engine's wait
// primitive. With n slots at most n-1 frames are ever in flight.
//
// The ring is driven by a single goroutine. Slot ownership is enforced by
// the sequential cursor, not by locks.
type Ring struct {
	slots  []*Slot
	cursor int
	engine ExecutionEngine
	waits  uint64
}

// NewRing builds a ring of n slots using alloc for per-position resources.
// n must be at least 2: one slot in flight plus one being recorded.
func NewRing(n int, engine ExecutionEngine, alloc SlotAllocator) (*Ring, error) {
	if n < 2 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("ring size %d, need at least 2", n)}
	}
	if engine == nil {
		return nil, &ConfigurationError{Reason: "nil execution engine"}
	}

	r := &Ring{
		slots:  make([]*Slot, n),
		cursor: n - 1, // first Acquire lands on slot 0
		engine: engine,
	}
	for i := range r.slots {
		slot, err := alloc(i)
		if err != nil {
			return nil, fmt.Errorf("frame: allocating slot %d: %w", i, err)
		}
		r.slots[i] = slot
	}
	return r, nil
}

// Len returns the ring length.
func (r *Ring) Len() int { return len(r.slots) }

// Index returns the current cursor position, valid after Acquire.
func (r *Ring) Index() int { return r.cursor }

// Current returns the slot selected by the last Acquire.
func (r *Ring) Current() *Slot { return r.slots[r.cursor] }

// Slot returns the slot at position i, for capacity validation.
func (r *Ring) Slot(i int) *Slot { return r.slots[i] }

// Waits counts how many times Acquire has had to block on the engine.
func (r *Ring) Waits() uint64 { return r.waits }

// Acquire advances the cursor to the next slot and returns it, blocking
// until the GPU has retired the slot's previous submission. This is the
// single suspension point of the frame loop: the wait is unbounded and a
// wait failure is fatal.
func (r *Ring) Acquire() (*Slot, error) {
	r.cursor = (r.cursor + 1) % len(r.slots)
	slot := r.slots[r.cursor]

	if slot.Fence != 0 && r.engine.Completed() < slot.Fence {
		r.waits++
		if err := r.engine.WaitUntilRetired(slot.Fence); err != nil {
			return nil, fmt.Errorf("%w: reclaiming slot %d (marker %d): %v",
				ErrSynchronization, r.cursor, slot.Fence, err)
		}
	}
	return slot, nil
}

// Submit stamps the current slot with the new completion marker and asks
// the engine to signal it once the commands submitted this tick retire.
// Markers must increase monotonically across the process lifetime.
func (r *Ring) Submit(marker uint64) error {
	slot := r.slots[r.cursor]
	if marker <= slot.Fence {
		return fmt.Errorf("%w: marker %d not beyond slot marker %d", ErrSubmission, marker, slot.Fence)
	}
	slot.Fence = marker
	if err := r.engine.Signal(marker); err != nil {
		return fmt.Errorf("%w: signaling marker %d: %v", ErrSubmission, marker, err)
	}
	return nil
}
