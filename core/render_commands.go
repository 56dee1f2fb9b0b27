package core

import (
	"context"
	"errors"

	"github.com/battles-core/core/capture"
	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
	"github.com/battles-core/core/dmx"
	"github.com/battles-core/core/render"
)

const cameraLayerID = "camera"
const fxLayerID = "fx"
const presentFPS = 60

// AttachWindow creates the presentation surface sized width x height
// (§6 attach_window). windowHandle identifies the host-owned native
// window a real platform backend would embed into; this core's
// present path is Ebiten-driven and opens its own window, so
// windowHandle is accepted for interface compatibility and otherwise
// unused — documented in DESIGN.md as a deliberate non-adoption of the
// teacher's native-window-handle plumbing.
func (c *Core) AttachWindow(windowHandle uintptr, width, height int) error {
	surface, err := render.NewEbitenSurface(width, height)
	if err != nil {
		return corerr.New("core.AttachWindow", corerr.GpuFatal, err)
	}
	if err := surface.Start("battles-core"); err != nil {
		return corerr.New("core.AttachWindow", corerr.GpuFatal, err)
	}

	c.mu.Lock()
	c.surface = surface
	c.compositor.Resize(width, height)
	c.mu.Unlock()
	return nil
}

// StartComposite begins compositing, optionally pulling frames from a
// camera source at device_id (§6 start_composite).
func (c *Core) StartComposite(deviceID string, width, height, fps, rotationDeg int, hasCamera bool) error {
	c.mu.Lock()
	clk, surface, compositor := c.clock, c.surface, c.compositor
	c.mu.Unlock()

	if surface == nil {
		return corerr.New("core.StartComposite", corerr.InvalidInput, errors.New("attach_window must be called first"))
	}

	ctx, cancel := context.WithCancel(context.Background())

	if hasCamera {
		cam, err := capture.NewCameraSource(clk, deviceID, width, height, fps, rotationDeg, nil)
		if err != nil {
			cancel()
			return err
		}
		if err := cam.Start(ctx); err != nil {
			cancel()
			return err
		}
		c.mu.Lock()
		c.cameraSource = cam
		c.mu.Unlock()
		go c.pumpLayer(ctx, cameraLayerID, cam.Frames())
	}

	c.mu.Lock()
	c.compositeCancel = cancel
	c.mu.Unlock()

	go c.presentLoop(ctx, clk, compositor, surface)
	return nil
}

// pumpLayer feeds every frame read from ch into the compositor as
// layer id, visible by default with no chroma key, until ctx is done.
func (c *Core) pumpLayer(ctx context.Context, id string, ch <-chan capture.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-ch:
			if !ok {
				return
			}
			c.mu.Lock()
			compositor := c.compositor
			c.mu.Unlock()
			compositor.SetLayer(&render.Layer{
				ID:      id,
				Opacity: 1,
				ZOrder:  layerZOrder(id),
				Visible: true,
				Texture: &render.Frame{Width: f.Width, Height: f.Height, RGBA: f.RGBA, PTS: f.PTS},
			})
		}
	}
}

func layerZOrder(id string) int {
	if id == fxLayerID {
		return 1
	}
	return 0
}

// presentLoop composes and presents at a fixed pace independent of
// capture fps (the compositor always holds the latest frame per
// layer), forwarding any readback bytes to the host as a
// composite_frame event (§6 "composite_frame(bytes) only while
// readback path is enabled").
func (c *Core) presentLoop(ctx context.Context, clk *clock.Clock, compositor *render.Compositor, surface render.Surface) {
	ticker := clk.NewTicker(presentFPS)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ticker.WaitNextTick()
		frame := compositor.Compose()
		_ = surface.Render(frame, render.ChromaKeyParams{})
		if bytes, ok := surface.PollReadback(); ok {
			c.mu.Lock()
			sink := c.sink
			c.mu.Unlock()
			if sink != nil {
				sink.OnCompositeFrame(bytes)
			}
		}
	}
}

// StopComposite halts compositing and releases the camera source, if
// any (§6 stop_composite).
func (c *Core) StopComposite() error {
	c.mu.Lock()
	cam := c.cameraSource
	cancel := c.compositeCancel
	compositor := c.compositor
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if cam != nil {
		_ = cam.Stop()
	}
	compositor.RemoveLayer(cameraLayerID)

	c.mu.Lock()
	c.cameraSource = nil
	c.compositeCancel = nil
	c.mu.Unlock()
	return nil
}

// PlayFX loops path as the fx layer with the given chroma-key
// parameters (§6 play_fx).
func (c *Core) PlayFX(path, keyColor string, tolerance, similarity float64, useChromaKey bool) error {
	c.mu.Lock()
	clk := c.clock
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	fx, err := capture.NewFileSource(clk, path, 0, 0, 30, 0, nil)
	if err != nil {
		cancel()
		return err
	}
	if err := fx.Start(ctx); err != nil {
		cancel()
		return err
	}

	r, g, b := parseKeyColor(keyColor)
	var key *render.ChromaKeyParams
	if useChromaKey {
		key = &render.ChromaKeyParams{KeyR: r, KeyG: g, KeyB: b, Tolerance: tolerance, Similarity: similarity, Enabled: true}
	}

	c.mu.Lock()
	c.fxSource = fx
	c.fxCancel = cancel
	compositor := c.compositor
	c.mu.Unlock()

	compositor.SetLayer(&render.Layer{ID: fxLayerID, Opacity: 1, ZOrder: layerZOrder(fxLayerID), Visible: true, ChromaKey: key})
	go c.pumpLayer(ctx, fxLayerID, fx.Frames())
	return nil
}

// parseKeyColor reuses the shared "#RRGGBB or R,G,B" parser (§6 Color
// parsing), converting its normalized [0,1] floats to bytes.
func parseKeyColor(s string) (r, g, b byte) {
	fr, fg, fb := dmx.ParseColor(s)
	return byteFromUnit(fr), byteFromUnit(fg), byteFromUnit(fb)
}

func byteFromUnit(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

// StopFX stops the fx source and removes its layer (§6 stop_fx).
func (c *Core) StopFX() error {
	c.mu.Lock()
	fx := c.fxSource
	cancel := c.fxCancel
	compositor := c.compositor
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fx != nil {
		_ = fx.Stop()
	}
	compositor.RemoveLayer(fxLayerID)

	c.mu.Lock()
	c.fxSource = nil
	c.fxCancel = nil
	c.mu.Unlock()
	return nil
}

// SetLayers adjusts the camera and fx layers' visibility and opacity
// (§6 set_layers).
func (c *Core) SetLayers(cameraVisible bool, cameraOpacity float64, overlayVisible bool, overlayOpacity float64) error {
	c.mu.Lock()
	compositor := c.compositor
	c.mu.Unlock()

	setLayerVisibility(compositor, cameraLayerID, cameraVisible, cameraOpacity)
	setLayerVisibility(compositor, fxLayerID, overlayVisible, overlayOpacity)
	return nil
}

func setLayerVisibility(compositor *render.Compositor, id string, visible bool, opacity float64) {
	// Compositor has no direct mutate-in-place API; re-registering with
	// the same ID replaces the prior entry (SetLayer's documented
	// semantics), so layer identity and z-order are preserved.
	compositor.SetLayer(&render.Layer{ID: id, Opacity: opacity, ZOrder: layerZOrder(id), Visible: visible})
}

// StartMonitorPreviews begins capturing monitor "0" and forwarding its
// frames to the host as monitor_preview_frame events with monitor index
// 0 (§6 start_monitor_previews); no other monitor is captured.
func (c *Core) StartMonitorPreviews() error {
	c.mu.Lock()
	clk, sink := c.clock, c.sink
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	screen, err := capture.NewScreenSource(clk, "0", 0, 0, 15, 0, nil)
	if err != nil {
		cancel()
		return err
	}
	if err := screen.Start(ctx); err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	c.monitorCancels = append(c.monitorCancels, cancel)
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-screen.Frames():
				if !ok {
					return
				}
				if sink != nil {
					sink.OnMonitorPreviewFrame(0, f.RGBA)
				}
			}
		}
	}()
	return nil
}

// StopMonitorPreviews halts every running monitor preview capture (§6
// stop_monitor_previews).
func (c *Core) StopMonitorPreviews() error {
	c.mu.Lock()
	cancels := c.monitorCancels
	c.monitorCancels = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return nil
}
