package core

import (
	"context"
	"errors"
	"net"

	"github.com/google/uuid"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
	"github.com/battles-core/core/dmx"
)

const sacnSourceName = "battles-core"

// openDMXTransport returns the Session.openFn that picks the concrete
// Transport for a discovered device's Kind (§4.F), resolving the
// Enttec ODE legacy-vs-Art-Net ambiguity (§9 Open Question) in favor
// of the production Art-Net unicast path: every ODE kind (ODE, ODE Mk2,
// ODE Mk3) gets the Art-Net transport, the legacy UDP:3039 transport is
// never selected here, and an ODE whose Address is not an IP literal is
// rejected as InvalidInput.
func openDMXTransport(clk *clock.Clock) func(*dmx.DeviceDescriptor) (dmx.Transport, error) {
	return func(d *dmx.DeviceDescriptor) (dmx.Transport, error) {
		switch d.Kind {
		case dmx.KindEnttecUSB, dmx.KindEnttecUSBMk2:
			return dmx.NewEnttecUSBTransport(clk, d.Address)
		case dmx.KindOpenDMX, dmx.KindSerialGeneric:
			return dmx.NewOpenDMXTransport(clk, d.Address)
		case dmx.KindEnttecODE, dmx.KindEnttecODEMk2, dmx.KindEnttecODEMk3:
			ip := net.ParseIP(d.Address)
			if ip == nil {
				return nil, corerr.New("core.openDMXTransport", corerr.InvalidInput, errors.New("enttec ode device has no resolvable address"))
			}
			return dmx.NewEnttecODEArtNetTransport(clk, ip)
		case dmx.KindDMXISHID:
			return dmx.NewDMXISTransport(d.Address), nil
		case dmx.KindArtNet:
			return dmx.NewArtNetTransport(clk)
		case dmx.KindSACN:
			cid := [16]byte(uuid.New())
			return dmx.NewSACNTransport(clk, cid, sacnSourceName)
		default:
			return nil, corerr.New("core.openDMXTransport", corerr.DeviceNotFound, errors.New("unknown dmx device kind"))
		}
	}
}

// ScanDMXDevices runs discovery and caches the result for subsequent
// ConnectDMXDevice(id) calls (§6 scan_dmx_devices).
func (c *Core) ScanDMXDevices(ctx context.Context) []dmx.DeviceDescriptor {
	found := dmx.Discover(ctx)
	c.mu.Lock()
	c.dmxDiscovered = found
	c.mu.Unlock()
	return found
}

// ConnectDMXDevice selects and opens the previously-discovered device
// with the given id (§6 connect_dmx_device).
func (c *Core) ConnectDMXDevice(id string) error {
	c.mu.Lock()
	var target *dmx.DeviceDescriptor
	for i := range c.dmxDiscovered {
		if c.dmxDiscovered[i].ID == id {
			target = &c.dmxDiscovered[i]
			break
		}
	}
	session := c.dmxSession
	c.mu.Unlock()

	if target == nil {
		return corerr.New("core.ConnectDMXDevice", corerr.DeviceNotFound, errors.New("id not found in last scan"))
	}
	return session.Select(target)
}

// DisconnectDMXDevice releases the currently-selected device, if any
// (§6 disconnect_dmx_device).
func (c *Core) DisconnectDMXDevice() error {
	c.mu.Lock()
	session := c.dmxSession
	c.mu.Unlock()
	return session.Disconnect()
}

// SendDMX writes raw channel bytes into universe at startChannel and
// sends the resulting snapshot (§6 send_dmx).
func (c *Core) SendDMX(universe, startChannel int, data []byte) error {
	c.mu.Lock()
	store, session := c.dmxStore, c.dmxSession
	c.mu.Unlock()

	store.Write(universe, startChannel, data)
	return session.Send(store.Snapshot(universe), universe)
}

// DMXColorInput carries the optional moving-head/mode fields shared by
// set_dmx_rgb, set_dmx_pan_tilt, and set_dmx_complete (§6).
type DMXColorInput struct {
	R, G, B   byte
	Intensity *byte
	Pan       *float64
	Tilt      *float64
	Mode      *dmx.FixtureMode
}

func (c *Core) sendFixturePacket(universe, startChannel int, in DMXColorInput) error {
	intensity := byte(255)
	if in.Intensity != nil {
		intensity = *in.Intensity
	}
	packet := dmx.BuildPacket(dmx.PacketInput{
		R: in.R, G: in.G, B: in.B,
		Intensity: intensity,
		Pan:       in.Pan,
		Tilt:      in.Tilt,
		Mode:      in.Mode,
	})

	c.mu.Lock()
	store, session := c.dmxStore, c.dmxSession
	c.mu.Unlock()

	store.Write(universe, startChannel, packet)
	return session.Send(store.Snapshot(universe), universe)
}

// SetDMXRGB builds and sends an RGB(+intensity/mode/pan/tilt) fixture
// packet (§6 set_dmx_rgb).
func (c *Core) SetDMXRGB(universe, startChannel int, in DMXColorInput) error {
	return c.sendFixturePacket(universe, startChannel, in)
}

// SetDMXPanTilt builds and sends a pan/tilt-only fixture packet,
// leaving color at black (§6 set_dmx_pan_tilt).
func (c *Core) SetDMXPanTilt(universe, startChannel int, pan, tilt float64, mode *dmx.FixtureMode) error {
	return c.sendFixturePacket(universe, startChannel, DMXColorInput{Pan: &pan, Tilt: &tilt, Mode: mode})
}

// SetDMXComplete builds and sends a full RGB+intensity+pan/tilt+mode
// fixture packet in one call (§6 set_dmx_complete).
func (c *Core) SetDMXComplete(universe, startChannel int, in DMXColorInput) error {
	return c.sendFixturePacket(universe, startChannel, in)
}

// SetDMXDimmer writes a single dimmer channel and sends the universe
// (§6 set_dmx_dimmer).
func (c *Core) SetDMXDimmer(universe, channel int, value byte) error {
	return c.SendDMX(universe, channel, []byte{value})
}

// DMXBlackout zeroes universe and sends the all-zero snapshot (§6
// dmx_blackout).
func (c *Core) DMXBlackout(universe int) error {
	c.mu.Lock()
	store, session := c.dmxStore, c.dmxSession
	c.mu.Unlock()

	store.Blackout(universe)
	return session.Send(store.Snapshot(universe), universe)
}
