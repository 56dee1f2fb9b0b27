package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corelog"
	"github.com/battles-core/core/corerr"
)

// releaseDelay is how long Stop waits after cancelling the worker
// before returning, giving platform capture APIs (v4l2, AVFoundation,
// screen-grab backends) time to release the underlying handle so a
// rapid stop/start cycle does not leak it (§4.D).
const releaseDelay = 150 * time.Millisecond

// RawFrame is one undecoded capture at the device's native (possibly
// pre-rotation) dimensions.
type RawFrame struct {
	RGBA   []byte
	Width  int
	Height int
}

// grabFunc performs one blocking platform capture. It is injected per
// producer so tests can exercise queueing/rotation/backpressure without
// any OS backend (§4.D).
type grabFunc func(ctx context.Context) (RawFrame, error)

var errNoPlatformBackend = errors.New("capture: no platform backend linked in")

// ErrCaptureUnavailable wraps errNoPlatformBackend. No OS capture
// backend (v4l2/AVFoundation/screen APIs) is wired into this build;
// until one is linked in, every producer's default grabFunc returns
// this (§4.D decision recorded in SPEC_FULL.md — capture surfaces are
// exercised end to end via injected fakes, not a real device).
var ErrCaptureUnavailable = corerr.New("capture.grab", corerr.TransportFailure, errNoPlatformBackend)

func defaultGrab(ctx context.Context) (RawFrame, error) {
	return RawFrame{}, ErrCaptureUnavailable
}

// producer is the shared worker loop behind CameraSource, FileSource,
// and ScreenSource: a ticked grab, rotation, and a bounded drop-oldest
// hand-off to the consumer (§4.D).
type producer struct {
	op       string
	target   string
	width    int
	height   int
	fps      int
	rotation int
	grab     grabFunc
	clock    *clock.Clock
	errs     *corelog.Throttled

	stopped atomic.Bool
	frames  chan Frame
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func newProducer(op string, clk *clock.Clock, target string, width, height, fps, rotation int, grab grabFunc) (*producer, error) {
	if fps <= 0 {
		return nil, corerr.New(op, corerr.InvalidInput, errors.New("fps must be positive"))
	}
	if _, _, err := captureDimensions(width, height, rotation); err != nil {
		return nil, err
	}
	if grab == nil {
		grab = defaultGrab
	}
	return &producer{
		op:       op,
		target:   target,
		width:    width,
		height:   height,
		fps:      fps,
		rotation: rotation,
		grab:     grab,
		clock:    clk,
		errs:     corelog.NewThrottled(100),
		frames:   make(chan Frame, frameQueueCapacity),
	}, nil
}

// Start begins the ticked capture loop.
func (p *producer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.stopped.Store(false)
	p.wg.Add(1)
	go p.run(ctx)
	return nil
}

func (p *producer) run(ctx context.Context) {
	defer p.wg.Done()
	ticker := p.clock.NewTicker(p.fps)
	durationNS := uint64(1_000_000_000) / uint64(p.fps)

	for {
		if p.stopped.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		pts := ticker.WaitNextTick()

		raw, err := p.grab(ctx)
		if p.stopped.Load() {
			return
		}
		if err != nil {
			p.errs.Log(ctx, slog.LevelWarn, p.op+": grab failed", "err", err)
			continue
		}

		rotated := rotateRGBA(raw.RGBA, raw.Width, raw.Height, p.rotation)
		w, h := rotatedDims(raw.Width, raw.Height, p.rotation)
		pushDropOldest(p.frames, Frame{RGBA: rotated, Width: w, Height: h, PTS: pts, Duration: durationNS})
	}
}

// Stop cancels the worker, waits for it to exit, and holds for
// releaseDelay before returning (§4.D: "100-500ms release delay is
// acceptable on platforms that require it").
func (p *producer) Stop() error {
	p.stopped.Store(true)
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	time.Sleep(releaseDelay)
	return nil
}

func (p *producer) Frames() <-chan Frame { return p.frames }
