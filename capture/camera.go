package capture

import (
	"context"

	"github.com/battles-core/core/clock"
)

// CameraSource captures from a named camera device at a fixed
// resolution, fps, and rotation (§4.D).
type CameraSource struct {
	p *producer
}

// NewCameraSource returns a camera producer for deviceID. grab is
// injectable for tests; pass nil in production to use the headless
// stub until a platform backend is linked in.
func NewCameraSource(clk *clock.Clock, deviceID string, width, height, fps, rotationDeg int, grab grabFunc) (*CameraSource, error) {
	p, err := newProducer("capture.CameraSource", clk, deviceID, width, height, fps, rotationDeg, grab)
	if err != nil {
		return nil, err
	}
	return &CameraSource{p: p}, nil
}

func (c *CameraSource) Start(ctx context.Context) error { return c.p.Start(ctx) }
func (c *CameraSource) Stop() error                     { return c.p.Stop() }
func (c *CameraSource) Frames() <-chan Frame             { return c.p.Frames() }
