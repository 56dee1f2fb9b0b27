package capture

import (
	"context"

	"github.com/battles-core/core/clock"
)

// FileSource decodes a video file and loops it, presenting frames at
// fixed fps and the declared rotation (§4.D). Looping is a property of
// the injected grab implementation; this type only supplies the
// shared queueing/rotation contract.
type FileSource struct {
	p *producer
}

// NewFileSource returns a file-decode producer for path.
func NewFileSource(clk *clock.Clock, path string, width, height, fps, rotationDeg int, grab grabFunc) (*FileSource, error) {
	p, err := newProducer("capture.FileSource", clk, path, width, height, fps, rotationDeg, grab)
	if err != nil {
		return nil, err
	}
	return &FileSource{p: p}, nil
}

func (f *FileSource) Start(ctx context.Context) error { return f.p.Start(ctx) }
func (f *FileSource) Stop() error                     { return f.p.Stop() }
func (f *FileSource) Frames() <-chan Frame             { return f.p.Frames() }
