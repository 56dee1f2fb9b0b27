package streamdeck

import (
	"image"
	"image/color"
	"testing"
)

type fakeHID struct {
	writes      [][]byte
	featureSent [][]byte
	readStates  []bool
	closed      bool
}

func (f *fakeHID) Read(p []byte) (int, error) {
	copy(p, make([]byte, len(p)))
	for i, pressed := range f.readStates {
		if pressed && keyStatesOffset+i < len(p) {
			p[keyStatesOffset+i] = 1
		}
	}
	return len(p), nil
}

func (f *fakeHID) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	return len(p), nil
}

func (f *fakeHID) Close() error { f.closed = true; return nil }

func (f *fakeHID) GetFeatureReport(p []byte) (int, error) { return len(p), nil }

func (f *fakeHID) SendFeatureReport(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.featureSent = append(f.featureSent, cp)
	return len(p), nil
}

func newTestSession(t *testing.T, pid PID) (*Session, *fakeHID) {
	t.Helper()
	fake := &fakeHID{}
	s, err := connectWith(pid, "SN1", func(vid, pidArg uint16, serial string) (hidDevice, error) {
		return fake, nil
	})
	if err != nil {
		t.Fatalf("connectWith: %v", err)
	}
	return s, fake
}

func TestConnectResetsKeyStreamOnOpen(t *testing.T) {
	_, fake := newTestSession(t, PIDXL)
	if len(fake.featureSent) != 1 {
		t.Fatalf("feature reports sent = %d, want 1 (reset key stream)", len(fake.featureSent))
	}
	if fake.featureSent[0][0] != 0x02 {
		t.Fatalf("reset key stream prefix = %#x, want 0x02", fake.featureSent[0][0])
	}
}

func TestSetBrightnessRejectsOutOfRange(t *testing.T) {
	s, _ := newTestSession(t, PIDMini)
	if err := s.SetBrightness(150); err == nil {
		t.Fatal("expected error for brightness > 100")
	}
}

func TestSetImageMarksLastPageDone(t *testing.T) {
	s, fake := newTestSession(t, PIDXL)
	img := image.NewRGBA(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	if err := s.SetImage(0, img); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if len(fake.writes) == 0 {
		t.Fatal("expected at least one page write")
	}
	last := fake.writes[len(fake.writes)-1]
	if last[3] != 1 {
		t.Fatalf("last page done flag = %d, want 1", last[3])
	}
}

func TestKeyStatesReportsPressed(t *testing.T) {
	s, fake := newTestSession(t, PIDMini)
	fake.readStates = []bool{false, true, false, false, false, false}
	states, err := s.KeyStates()
	if err != nil {
		t.Fatalf("KeyStates: %v", err)
	}
	if !states[1] || states[0] {
		t.Fatalf("states = %v, want only index 1 pressed", states)
	}
}

func TestCloseClosesUnderlyingDevice(t *testing.T) {
	s, fake := newTestSession(t, PIDMini)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fake.closed {
		t.Fatal("underlying device was not closed")
	}
}
