package dmx

import (
	"net"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
)

const enttecODELegacyPort = 3039

// buildEnttecODELegacyPacket frames like the Enttec USB packet but with
// a universe byte in place of the DMX start code (§4.F legacy ODE).
func buildEnttecODELegacyPacket(universe byte, snapshot [UniverseSize]byte) []byte {
	const payloadLen = 1 + UniverseSize
	packet := make([]byte, 0, 4+payloadLen+1)
	packet = append(packet, 0x7E, 0x06, byte(payloadLen&0xFF), byte(payloadLen>>8), universe)
	packet = append(packet, snapshot[:]...)
	packet = append(packet, 0xE7)
	return packet
}

// EnttecODELegacyTransport is the older, non-Art-Net Enttec ODE
// encoding, sent to udp ode_ip:3039 (§4.F). The production path for
// ODE devices in this system is Art-Net (EnttecODEArtNetTransport);
// this transport is retained for older firmware. Selecting between the
// two is left to the caller (§9 open question) — this core does not
// infer it from the device descriptor.
type EnttecODELegacyTransport struct {
	rateGate
	conn  *net.UDPConn
	odeIP net.IP
	errs  *throttle
}

// NewEnttecODELegacyTransport opens a socket targeting odeIP:3039.
func NewEnttecODELegacyTransport(c *clock.Clock, odeIP net.IP) (*EnttecODELegacyTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, corerr.New("dmx.NewEnttecODELegacyTransport", corerr.TransportFailure, err)
	}
	t := &EnttecODELegacyTransport{conn: conn, odeIP: odeIP, errs: newThrottle()}
	t.rateGate = newRateGate(c, t)
	return t, nil
}

func (t *EnttecODELegacyTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	if !t.allow(universe) {
		return nil
	}
	packet := buildEnttecODELegacyPacket(byte(universe), snapshot)
	dest := &net.UDPAddr{IP: t.odeIP, Port: enttecODELegacyPort}
	if _, err := t.conn.WriteToUDP(packet, dest); err != nil {
		t.errs.log("dmx.EnttecODELegacyTransport.Send", err)
	}
	return nil
}

func (t *EnttecODELegacyTransport) Close() error { return t.conn.Close() }
