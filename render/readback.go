package render

import (
	"errors"
	"sync"
)

// ReadbackState is one state of a readback ring entry (§3 Readback
// Ring Buffer).
type ReadbackState int

const (
	Free ReadbackState = iota
	InFlight
	MappingPending
	Mapped
)

func (s ReadbackState) String() string {
	switch s {
	case Free:
		return "free"
	case InFlight:
		return "in_flight"
	case MappingPending:
		return "mapping_pending"
	case Mapped:
		return "mapped"
	default:
		return "invalid"
	}
}

// ErrRingBusy is returned by Submit when the next ring slot has not
// returned to Free yet; the caller should skip this frame's readback
// copy rather than block (§4.C: never blocks on CPU readback).
var ErrRingBusy = errors.New("render: readback ring buffer not free")

type readbackEntry struct {
	state       ReadbackState
	frameNumber uint64
	poll        func() (done bool, data []byte, err error)
}

// ReadbackRingSize is fixed at 3 entries (§3).
const ReadbackRingSize = 3

// ReadbackRing drives the async GPU→CPU transfer state machine:
// Free → InFlight → MappingPending → (Mapped →) Free. A buffer may be
// targeted by a GPU copy only while Free; map_async-equivalent work is
// started at most once per InFlight episode; at most one entry is
// Mapped at any instant (§3, §8 invariant 4).
type ReadbackRing struct {
	mu      sync.Mutex
	entries [ReadbackRingSize]*readbackEntry
	next    int
}

// NewReadbackRing returns a ring with every entry Free.
func NewReadbackRing() *ReadbackRing {
	r := &ReadbackRing{}
	for i := range r.entries {
		r.entries[i] = &readbackEntry{state: Free}
	}
	return r
}

// Submit copies the current frame into the next ring slot and marks it
// InFlight. startCopy performs the GPU copy_texture_to_buffer and
// submits the command buffer; it must not map the buffer. If the next
// slot is not Free, Submit returns ErrRingBusy without calling
// startCopy — the caller should silently drop this frame's readback.
func (r *ReadbackRing) Submit(frameNumber uint64, startCopy func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[r.next%ReadbackRingSize]
	if e.state != Free {
		return ErrRingBusy
	}
	if err := startCopy(); err != nil {
		return err
	}
	e.frameNumber = frameNumber
	e.state = InFlight
	r.next++
	return nil
}

// Poll drives one iteration of the two-pass drain described in §4.C:
// first, every InFlight entry has its async mapping started exactly
// once via startMap; second, every MappingPending entry is polled
// non-blockingly. The first entry whose poll function reports
// completion is unmapped (returned to Free) and its bytes returned.
// A failed startMap or a failed poll also returns its entry to Free so
// the ring is never permanently stuck on a dead GPU fence.
func (r *ReadbackRing) Poll(startMap func(frameNumber uint64) (poll func() (bool, []byte, error), err error)) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.state != InFlight {
			continue
		}
		poll, err := startMap(e.frameNumber)
		if err != nil {
			e.state = Free
			continue
		}
		e.poll = poll
		e.state = MappingPending
	}

	for _, e := range r.entries {
		if e.state != MappingPending {
			continue
		}
		done, data, err := e.poll()
		if err != nil {
			e.state = Free
			e.poll = nil
			continue
		}
		if !done {
			continue
		}
		e.state = Mapped
		e.poll = nil
		e.state = Free
		return data, true
	}
	return nil, false
}

// States returns a snapshot of every entry's state, for tests asserting
// the §8 invariant count(Mapped) <= 1.
func (r *ReadbackRing) States() [ReadbackRingSize]ReadbackState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [ReadbackRingSize]ReadbackState
	for i, e := range r.entries {
		out[i] = e.state
	}
	return out
}
