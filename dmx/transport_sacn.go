package dmx

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
	"golang.org/x/net/ipv4"
)

const sacnPort = 5568

var sacnPacketIdentifier = [12]byte{'A', 'S', 'C', '-', 'E', '1', '.', '1', '7', 0, 0, 0}

// buildSACNPacket assembles the canonical 638-byte E1.31 DMX-data
// packet for a 512-channel universe (§4.F sACN/E1.31): Root Layer
// (preamble, ACN identifier, root vector, source CID), Framing Layer
// (vector, source name, priority, sync/seq/options, universe), DMP
// Layer (vector, address type, addressing, start code, 512 channels).
func buildSACNPacket(cid [16]byte, sourceName string, universe int, sequence byte, data [UniverseSize]byte) []byte {
	const (
		rootVector    = 0x00000004
		framingVector = 0x00000002
		dmpVector     = 0x02
		dmpAddrType   = 0xA1
		priority      = 100
	)

	// Lengths are fixed for a 512-channel universe: total packet is
	// 638 bytes (root 38 + framing 77 + dmp 523).
	const (
		totalLen   = 638
		rootLen    = totalLen - 16 // from root Flags&Length to end
		framingLen = totalLen - 38 // from framing Flags&Length to end
		dmpLen     = totalLen - 115
	)

	buf := make([]byte, 0, totalLen)

	// Root Layer
	buf = append(buf, 0x00, 0x10) // preamble size
	buf = append(buf, 0x00, 0x00) // postamble size
	buf = append(buf, sacnPacketIdentifier[:]...)
	buf = appendFlagsLength(buf, rootLen)
	buf = appendU32(buf, rootVector)
	buf = append(buf, cid[:]...)

	// Framing Layer
	buf = appendFlagsLength(buf, framingLen)
	buf = appendU32(buf, framingVector)
	buf = append(buf, padName(sourceName, 64)...)
	buf = append(buf, priority)
	buf = appendU16(buf, 0) // sync address
	buf = append(buf, sequence)
	buf = append(buf, 0x00) // options
	buf = appendU16(buf, uint16(universe))

	// DMP Layer
	buf = appendFlagsLength(buf, dmpLen)
	buf = append(buf, dmpVector)
	buf = append(buf, dmpAddrType)
	buf = appendU16(buf, 0x0000) // first property address
	buf = appendU16(buf, 0x0001) // address increment
	buf = appendU16(buf, 0x0201) // property value count: start code + 512
	buf = append(buf, 0x00)      // DMX start code
	buf = append(buf, data[:]...)

	return buf
}

func appendFlagsLength(buf []byte, length int) []byte {
	v := uint16(0x7000) | uint16(length&0x0FFF)
	return appendU16(buf, v)
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func padName(name string, size int) []byte {
	out := make([]byte, size)
	copy(out, name)
	return out
}

// SACNTransport sends DMX-over-E1.31 to the multicast group
// 239.255.0.<universe>:5568 (§4.F).
type SACNTransport struct {
	rateGate
	conn       *net.UDPConn
	pktConn    *ipv4.PacketConn
	cid        [16]byte
	sourceName string
	sequence   byte
	errs       *throttle
}

// NewSACNTransport opens a UDP socket suitable for multicast sends.
// sourceName is truncated to 64 bytes per the Framing Layer; cid should
// be a stable 16-byte identifier for this sender (e.g. a UUID's raw
// bytes).
func NewSACNTransport(c *clock.Clock, cid [16]byte, sourceName string) (*SACNTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, corerr.New("dmx.NewSACNTransport", corerr.TransportFailure, err)
	}
	t := &SACNTransport{
		conn:       conn,
		pktConn:    ipv4.NewPacketConn(conn),
		cid:        cid,
		sourceName: sourceName,
		errs:       newThrottle(),
	}
	t.rateGate = newRateGate(c, t)
	return t, nil
}

func sacnGroupAddr(universe int) (*net.UDPAddr, error) {
	ip := net.ParseIP(fmt.Sprintf("239.255.0.%d", universe&0xFF))
	if ip == nil {
		return nil, fmt.Errorf("invalid sacn universe %d", universe)
	}
	return &net.UDPAddr{IP: ip, Port: sacnPort}, nil
}

func (t *SACNTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	if !t.allow(universe) {
		return nil
	}
	dest, err := sacnGroupAddr(universe)
	if err != nil {
		return corerr.New("dmx.SACNTransport.Send", corerr.InvalidInput, err)
	}
	packet := buildSACNPacket(t.cid, t.sourceName, universe, t.sequence, snapshot)
	t.sequence++
	if _, err := t.conn.WriteToUDP(packet, dest); err != nil {
		t.errs.log("dmx.SACNTransport.Send", err)
	}
	return nil
}

func (t *SACNTransport) Close() error { return t.conn.Close() }

// SetMulticastInterface selects the egress NIC for multicast sends on
// multi-homed hosts; multicast TTL is left at the OS default (§6).
func (t *SACNTransport) SetMulticastInterface(iface *net.Interface) error {
	return t.pktConn.SetMulticastInterface(iface)
}
