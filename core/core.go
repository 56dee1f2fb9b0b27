// Package core assembles the clock, dmx, render, capture, and
// streamdeck subsystems behind the operator command surface a host
// embeds this module through (§6).
package core

import (
	"context"
	"sync"

	"github.com/battles-core/core/capture"
	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
	"github.com/battles-core/core/dmx"
	"github.com/battles-core/core/render"
	"github.com/battles-core/core/streamdeck"
)

// ErrorKind and CoreError are the host-facing names for the shared
// error taxonomy (§7); the core package itself only ever constructs
// corerr.Error values.
type ErrorKind = corerr.Kind
type CoreError = corerr.Error

// EventSink receives core-originated events (§6 "Core -> host
// events"). A host registers one implementation with NewCore; no
// IPC/socket layer is introduced here — that boundary is the host's.
type EventSink interface {
	OnStreamDeckButton(fxID string, isPlaying bool)
	OnCompositeFrame(frame []byte)
	OnMonitorPreviewFrame(monitorIndex int, frame []byte)
}

// Core is the embeddable entry point: one instance per running show.
// It holds no package-level global state — every piece of mutable
// state lives on this struct, guarded by mu.
type Core struct {
	mu    sync.Mutex
	clock *clock.Clock
	sink  EventSink

	dmxStore      *dmx.Store
	dmxSession    *dmx.Session
	dmxDiscovered []dmx.DeviceDescriptor

	compositor *render.Compositor
	surface    render.Surface

	cameraSource capture.Source

	fxSource capture.Source
	fxCancel context.CancelFunc

	compositeCancel context.CancelFunc

	monitorCancels []context.CancelFunc

	sdSession     *streamdeck.Session
	sdController  *streamdeck.Controller
	sdWatchCancel context.CancelFunc
}

// NewCore returns an uninitialized Core. Call InitializeCompositeSystem
// before any other command.
func NewCore(sink EventSink) *Core {
	return &Core{sink: sink}
}

// InitializeCompositeSystem allocates the shared clock, DMX universe
// store, DMX session, and compositor (§6 initialize_composite_system).
func (c *Core) InitializeCompositeSystem() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clock = clock.New()
	c.dmxStore = dmx.NewStore()
	c.dmxSession = dmx.NewSession(openDMXTransport(c.clock))
	c.compositor = render.NewCompositor(0, 0)
	return nil
}
