package dmx

import (
	"bytes"
	"testing"

	"github.com/battles-core/core/clock"
)

type fakeWire struct {
	writes [][]byte
	closed bool
}

func (f *fakeWire) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	return len(p), nil
}

func (f *fakeWire) Close() error {
	f.closed = true
	return nil
}

// Scenario B from spec §8: dmx_blackout(universe=1) after connect; wire
// bytes: 0x7E 0x06 0x01 0x02 0x00 + 512 x 0x00 + 0xE7.
func TestEnttecUSBTransportBlackoutWireBytes(t *testing.T) {
	wire := &fakeWire{}
	tr := newEnttecUSBTransport(clock.New(), wire)

	var blackout [UniverseSize]byte
	if err := tr.Send(blackout, 1); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(wire.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(wire.writes))
	}
	got := wire.writes[0]

	want := []byte{0x7E, 0x06, 0x01, 0x02, 0x00}
	if !bytes.Equal(got[:5], want) {
		t.Fatalf("header = %x, want %x", got[:5], want)
	}
	if got[len(got)-1] != 0xE7 {
		t.Fatalf("trailer = %x, want 0xE7", got[len(got)-1])
	}
	if len(got) != 5+UniverseSize+1 {
		t.Fatalf("len = %d, want %d", len(got), 5+UniverseSize+1)
	}
	for _, b := range got[5 : 5+UniverseSize] {
		if b != 0 {
			t.Fatalf("expected all-zero payload for blackout")
		}
	}
}

func TestEnttecUSBTransportRateLimited(t *testing.T) {
	wire := &fakeWire{}
	tr := newEnttecUSBTransport(clock.New(), wire)

	var snap [UniverseSize]byte
	_ = tr.Send(snap, 1)
	_ = tr.Send(snap, 1) // immediate second call must not emit
	if len(wire.writes) != 1 {
		t.Fatalf("expected 1 write due to rate limit, got %d", len(wire.writes))
	}

	_ = tr.Send(snap, 2) // different universe: independent gate
	if len(wire.writes) != 2 {
		t.Fatalf("expected 2 writes (different universe), got %d", len(wire.writes))
	}
}

func TestOpenDMXTransportWireFraming(t *testing.T) {
	wire := &fakeWire{}
	tr := newOpenDMXTransport(clock.New(), wire)

	var snap [UniverseSize]byte
	snap[0] = 42
	_ = tr.Send(snap, 1)

	got := wire.writes[0]
	if got[0] != 0x00 {
		t.Fatalf("leading byte = %x, want 0x00", got[0])
	}
	if got[1] != 42 {
		t.Fatalf("first channel = %d, want 42", got[1])
	}
	if len(got) != 1+UniverseSize {
		t.Fatalf("len = %d, want %d", len(got), 1+UniverseSize)
	}
}

func TestEnttecUSBTransportClose(t *testing.T) {
	wire := &fakeWire{}
	tr := newEnttecUSBTransport(clock.New(), wire)
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !wire.closed {
		t.Fatal("expected wire to be closed")
	}
}
