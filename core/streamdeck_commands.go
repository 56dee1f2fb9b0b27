package core

import (
	"context"
	"errors"

	"github.com/battles-core/core/corerr"
	"github.com/battles-core/core/streamdeck"
)

// StreamdeckScan enumerates attached Stream Deck devices (§6
// streamdeck_scan).
func (c *Core) StreamdeckScan() ([]streamdeck.DeviceDescriptor, error) {
	return streamdeck.Scan()
}

// StreamdeckConnect opens the first enumerated device, starts its
// loading animation, and begins watching for button presses (§6
// streamdeck_connect).
func (c *Core) StreamdeckConnect() error {
	devices, err := streamdeck.Scan()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return corerr.New("core.StreamdeckConnect", corerr.DeviceNotFound, errors.New("no stream deck devices found"))
	}

	session, err := streamdeck.Connect(devices[0].PID, devices[0].Serial)
	if err != nil {
		return err
	}

	c.mu.Lock()
	clk, sink := c.clock, c.sink
	c.mu.Unlock()

	controller := streamdeck.NewController(session, clk, func(e streamdeck.ButtonEvent) {
		if sink != nil {
			sink.OnStreamDeckButton(e.ButtonID, e.IsPlaying)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	controller.StartLoadingAnimation(ctx)
	go controller.Watch(ctx)

	c.mu.Lock()
	c.sdSession = session
	c.sdController = controller
	c.sdWatchCancel = cancel
	c.mu.Unlock()
	return nil
}

// StreamdeckDisconnect stops watching and closes the device session
// (§6 streamdeck_disconnect).
func (c *Core) StreamdeckDisconnect() error {
	c.mu.Lock()
	session := c.sdSession
	cancel := c.sdWatchCancel
	c.sdSession = nil
	c.sdController = nil
	c.sdWatchCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if session == nil {
		return nil
	}
	return session.Close()
}

// StreamdeckUpdateLayout assigns the battle board and user fx buttons
// to the connected device's grid and renders every tile (§6
// streamdeck_update_layout).
func (c *Core) StreamdeckUpdateLayout(battleBoard, userFX []streamdeck.FxButton) error {
	c.mu.Lock()
	controller := c.sdController
	c.mu.Unlock()

	if controller == nil {
		return corerr.New("core.StreamdeckUpdateLayout", corerr.InvalidInput, errors.New("streamdeck_connect must be called first"))
	}
	return controller.UpdateLayout(battleBoard, userFX)
}

// StreamdeckSetButtonState updates the playing/stopped state for the
// button assigned to fxID and re-renders it (§6
// streamdeck_set_button_state).
func (c *Core) StreamdeckSetButtonState(fxID string, isPlaying bool) error {
	c.mu.Lock()
	controller := c.sdController
	c.mu.Unlock()

	if controller == nil {
		return corerr.New("core.StreamdeckSetButtonState", corerr.InvalidInput, errors.New("streamdeck_connect must be called first"))
	}
	return controller.SetButtonState(fxID, isPlaying)
}
