package capture

import (
	"context"

	"github.com/battles-core/core/clock"
)

// ScreenSource captures a monitor or window region at fixed fps and
// rotation (§4.D).
type ScreenSource struct {
	p *producer
}

// NewScreenSource returns a screen-capture producer for monitorID.
func NewScreenSource(clk *clock.Clock, monitorID string, width, height, fps, rotationDeg int, grab grabFunc) (*ScreenSource, error) {
	p, err := newProducer("capture.ScreenSource", clk, monitorID, width, height, fps, rotationDeg, grab)
	if err != nil {
		return nil, err
	}
	return &ScreenSource{p: p}, nil
}

func (s *ScreenSource) Start(ctx context.Context) error { return s.p.Start(ctx) }
func (s *ScreenSource) Stop() error                     { return s.p.Stop() }
func (s *ScreenSource) Frames() <-chan Frame             { return s.p.Frames() }
