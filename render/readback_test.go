package render

import "testing"

func TestReadbackRingSubmitThenPollRoundTrip(t *testing.T) {
	ring := NewReadbackRing()
	copied := []byte{1, 2, 3, 4}

	if err := ring.Submit(1, func() error { return nil }); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	mapCalls := 0
	data, ok := ring.Poll(func(frameNumber uint64) (func() (bool, []byte, error), error) {
		mapCalls++
		if frameNumber != 1 {
			t.Fatalf("frameNumber = %d, want 1", frameNumber)
		}
		return func() (bool, []byte, error) { return true, copied, nil }, nil
	})
	if !ok {
		t.Fatal("expected Poll to return data")
	}
	if string(data) != string(copied) {
		t.Fatalf("data = %v, want %v", data, copied)
	}
	if mapCalls != 1 {
		t.Fatalf("startMap called %d times, want exactly 1 per InFlight episode", mapCalls)
	}

	states := ring.States()
	if states[0] != Free {
		t.Fatalf("entry state after drain = %s, want free", states[0])
	}
}

func TestReadbackRingMapAsyncCalledOnceWhilePending(t *testing.T) {
	ring := NewReadbackRing()
	_ = ring.Submit(1, func() error { return nil })

	mapCalls := 0
	pollCount := 0
	startMap := func(uint64) (func() (bool, []byte, error), error) {
		mapCalls++
		return func() (bool, []byte, error) {
			pollCount++
			if pollCount < 3 {
				return false, nil, nil // not ready yet
			}
			return true, []byte{9}, nil
		}, nil
	}

	for i := 0; i < 3; i++ {
		_, ok := ring.Poll(startMap)
		if i < 2 && ok {
			t.Fatalf("Poll completed too early on iteration %d", i)
		}
	}
	if mapCalls != 1 {
		t.Fatalf("startMap called %d times across pending polls, want 1", mapCalls)
	}
}

func TestReadbackRingSubmitBusyWhenNotFree(t *testing.T) {
	ring := NewReadbackRing()
	for i := 0; i < ReadbackRingSize; i++ {
		if err := ring.Submit(uint64(i), func() error { return nil }); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	// Every slot is now InFlight; the ring wraps back to slot 0.
	if err := ring.Submit(99, func() error { return nil }); err != ErrRingBusy {
		t.Fatalf("Submit on busy ring = %v, want ErrRingBusy", err)
	}
}

func TestReadbackRingAtMostOneMappedAtATime(t *testing.T) {
	ring := NewReadbackRing()
	_ = ring.Submit(1, func() error { return nil })
	_ = ring.Submit(2, func() error { return nil })

	_, _ = ring.Poll(func(uint64) (func() (bool, []byte, error), error) {
		return func() (bool, []byte, error) { return true, []byte{0}, nil }, nil
	})

	states := ring.States()
	mappedCount := 0
	for _, s := range states {
		if s == Mapped {
			mappedCount++
		}
	}
	if mappedCount > 1 {
		t.Fatalf("mapped count = %d, want <= 1", mappedCount)
	}
}

func TestReadbackRingStartMapErrorFreesEntry(t *testing.T) {
	ring := NewReadbackRing()
	_ = ring.Submit(1, func() error { return nil })

	_, ok := ring.Poll(func(uint64) (func() (bool, []byte, error), error) {
		return nil, errFakeMapStart
	})
	if ok {
		t.Fatal("expected no data on startMap error")
	}
	if states := ring.States(); states[0] != Free {
		t.Fatalf("entry state after failed startMap = %s, want free", states[0])
	}
}

var errFakeMapStart = fakeErr("map start failed")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
