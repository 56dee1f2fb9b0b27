package core

import (
	"sync"
	"testing"

	"github.com/battles-core/core/dmx"
)

type fakeTransport struct {
	mu    sync.Mutex
	sent  [][dmx.UniverseSize]byte
	sentU []int
}

func (f *fakeTransport) Send(snapshot [dmx.UniverseSize]byte, universe int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, snapshot)
	f.sentU = append(f.sentU, universe)
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func newTestCoreWithDMX(t *testing.T) (*Core, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{}
	c := NewCore(nil)
	if err := c.InitializeCompositeSystem(); err != nil {
		t.Fatalf("InitializeCompositeSystem: %v", err)
	}
	c.dmxSession = dmx.NewSession(func(*dmx.DeviceDescriptor) (dmx.Transport, error) {
		return transport, nil
	})
	if err := c.dmxSession.Select(&dmx.DeviceDescriptor{ID: "fake"}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	return c, transport
}

func TestSendDMXWritesThenSendsSnapshot(t *testing.T) {
	c, transport := newTestCoreWithDMX(t)

	if err := c.SendDMX(1, 5, []byte{10, 20, 30}); err != nil {
		t.Fatalf("SendDMX: %v", err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent = %d packets, want 1", len(transport.sent))
	}
	snap := transport.sent[0]
	if snap[4] != 10 || snap[5] != 20 || snap[6] != 30 {
		t.Fatalf("snapshot channels 5-7 = %v, %v, %v", snap[4], snap[5], snap[6])
	}
	if transport.sentU[0] != 1 {
		t.Fatalf("universe = %d, want 1", transport.sentU[0])
	}
}

func TestSetDMXDimmerWritesSingleChannel(t *testing.T) {
	c, transport := newTestCoreWithDMX(t)

	if err := c.SetDMXDimmer(2, 1, 200); err != nil {
		t.Fatalf("SetDMXDimmer: %v", err)
	}
	if transport.sent[0][0] != 200 {
		t.Fatalf("channel 1 = %d, want 200", transport.sent[0][0])
	}
}

func TestDMXBlackoutZeroesPreviouslyWrittenChannel(t *testing.T) {
	c, transport := newTestCoreWithDMX(t)

	if err := c.SendDMX(3, 1, []byte{255, 255}); err != nil {
		t.Fatalf("SendDMX: %v", err)
	}
	if err := c.DMXBlackout(3); err != nil {
		t.Fatalf("DMXBlackout: %v", err)
	}
	snap := transport.sent[len(transport.sent)-1]
	if snap[0] != 0 || snap[1] != 0 {
		t.Fatalf("blackout snapshot = %v, %v, want zeros", snap[0], snap[1])
	}
}

func TestSetDMXRGBWithoutModeWritesRawTriple(t *testing.T) {
	c, transport := newTestCoreWithDMX(t)

	if err := c.SetDMXRGB(1, 1, DMXColorInput{R: 10, G: 20, B: 30}); err != nil {
		t.Fatalf("SetDMXRGB: %v", err)
	}
	snap := transport.sent[0]
	if snap[0] != 10 || snap[1] != 20 || snap[2] != 30 {
		t.Fatalf("snapshot channels 1-3 = %v, %v, %v, want 10, 20, 30", snap[0], snap[1], snap[2])
	}
}

func TestConnectDMXDeviceRejectsUnknownID(t *testing.T) {
	c, _ := newTestCoreWithDMX(t)
	c.dmxDiscovered = []dmx.DeviceDescriptor{{ID: "known"}}

	if err := c.ConnectDMXDevice("missing"); err == nil {
		t.Fatal("ConnectDMXDevice: want error for unknown id")
	}
}
