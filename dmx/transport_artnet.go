package dmx

import (
	"net"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
)

const artNetPort = 6454

var artNetID = [8]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0}

// buildArtNetDMXPacket writes the 18-byte Art-Net header + 512 data bytes
// per §4.F: ID, opcode 0x5000 (LE on wire), protocol 0x000E (BE),
// seq=0, phys=0, universe-lsb, universe-msb=0, length (BE).
func buildArtNetDMXPacket(universeLSB byte, data [UniverseSize]byte) []byte {
	packet := make([]byte, 0, 18+UniverseSize)
	packet = append(packet, artNetID[:]...)
	packet = append(packet, 0x00, 0x50) // OpDmx = 0x5000, little-endian on wire
	packet = append(packet, 0x00, 0x0E) // protocol version 14, big-endian
	packet = append(packet, 0x00)       // sequence
	packet = append(packet, 0x00)       // physical
	packet = append(packet, universeLSB)
	packet = append(packet, 0x00) // universe msb / net
	packet = append(packet, byte(UniverseSize>>8), byte(UniverseSize&0xFF))
	packet = append(packet, data[:]...)
	return packet
}

// ArtNetTransport broadcasts DMX over Art-Net to the LAN (§4.F generic
// Art-Net broadcast path): universe_lsb = universe, dest
// 255.255.255.255:6454.
type ArtNetTransport struct {
	rateGate
	conn *net.UDPConn
	errs *throttle
}

// NewArtNetTransport opens a UDP socket able to send broadcast packets.
func NewArtNetTransport(c *clock.Clock) (*ArtNetTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, corerr.New("dmx.NewArtNetTransport", corerr.TransportFailure, err)
	}
	t := &ArtNetTransport{conn: conn, errs: newThrottle()}
	t.rateGate = newRateGate(c, t)
	return t, nil
}

func (t *ArtNetTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	if !t.allow(universe) {
		return nil
	}
	packet := buildArtNetDMXPacket(byte(universe), snapshot)
	dest := &net.UDPAddr{IP: net.IPv4bcast, Port: artNetPort}
	if _, err := t.conn.WriteToUDP(packet, dest); err != nil {
		t.errs.log("dmx.ArtNetTransport.Send", err)
	}
	return nil
}

func (t *ArtNetTransport) Close() error { return t.conn.Close() }

// EnttecODEArtNetTransport unicasts Art-Net to an Enttec ODE at a known
// IP, using universe_lsb = universe - 1 (the ODE's wire is 0-indexed)
// per §4.F and §8 scenario A. This is the production ODE path; the
// legacy non-Art-Net encoding in transport_enttec_ode.go exists for
// older firmware (§9 open question: selection criterion left to the
// caller/operator, not inferred here).
type EnttecODEArtNetTransport struct {
	rateGate
	conn  *net.UDPConn
	odeIP net.IP
	errs  *throttle
}

// NewEnttecODEArtNetTransport opens a socket targeting odeIP:6454.
func NewEnttecODEArtNetTransport(c *clock.Clock, odeIP net.IP) (*EnttecODEArtNetTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, corerr.New("dmx.NewEnttecODEArtNetTransport", corerr.TransportFailure, err)
	}
	t := &EnttecODEArtNetTransport{conn: conn, odeIP: odeIP, errs: newThrottle()}
	t.rateGate = newRateGate(c, t)
	return t, nil
}

func (t *EnttecODEArtNetTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	if !t.allow(universe) {
		return nil
	}
	lsb := byte(universe - 1)
	packet := buildArtNetDMXPacket(lsb, snapshot)
	dest := &net.UDPAddr{IP: t.odeIP, Port: artNetPort}
	if _, err := t.conn.WriteToUDP(packet, dest); err != nil {
		t.errs.log("dmx.EnttecODEArtNetTransport.Send", err)
	}
	return nil
}

func (t *EnttecODEArtNetTransport) Close() error { return t.conn.Close() }
