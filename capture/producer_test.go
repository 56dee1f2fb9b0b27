package capture

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/battles-core/core/clock"
)

func countingGrab(calls *atomic.Int64, w, h int) grabFunc {
	return func(ctx context.Context) (RawFrame, error) {
		calls.Add(1)
		return RawFrame{RGBA: make([]byte, w*h*4), Width: w, Height: h}, nil
	}
}

func TestProducerDeliversRotatedFrames(t *testing.T) {
	var calls atomic.Int64
	clk := clock.New()
	p, err := newProducer("test", clk, "dev0", 4, 2, 200, 90, countingGrab(&calls, 4, 2))
	if err != nil {
		t.Fatalf("newProducer: %v", err)
	}

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case f := <-p.Frames():
		if f.Width != 2 || f.Height != 4 {
			t.Fatalf("frame dims = %dx%d, want 2x4 (rotated 90)", f.Width, f.Height)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if calls.Load() == 0 {
		t.Fatal("grab was never called")
	}
}

func TestProducerStopIsDeterministic(t *testing.T) {
	var calls atomic.Int64
	clk := clock.New()
	p, err := newProducer("test", clk, "dev0", 4, 4, 500, 0, countingGrab(&calls, 4, 4))
	if err != nil {
		t.Fatalf("newProducer: %v", err)
	}

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-p.Frames()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	n := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != n {
		t.Fatal("grab kept being called after Stop returned")
	}
}

func TestNewProducerRejectsInvalidFps(t *testing.T) {
	clk := clock.New()
	if _, err := newProducer("test", clk, "dev0", 4, 4, 0, 0, nil); err == nil {
		t.Fatal("expected error for fps=0")
	}
}

func TestNewProducerDefaultsToHeadlessGrab(t *testing.T) {
	clk := clock.New()
	p, err := newProducer("test", clk, "dev0", 4, 4, 200, 0, nil)
	if err != nil {
		t.Fatalf("newProducer: %v", err)
	}
	if _, err := p.grab(context.Background()); err != ErrCaptureUnavailable {
		t.Fatalf("default grab error = %v, want ErrCaptureUnavailable", err)
	}
}
