package dmx

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	"github.com/battles-core/core/corerr"
)

const (
	artNetOpPoll      = 0x2000
	artNetOpPollReply = 0x2100
	artPollWindow     = 3 * time.Second
)

// buildArtPollPacket builds the ArtPoll broadcast packet that solicits
// ArtPollReply from every Art-Net node on the subnet (§4.G).
func buildArtPollPacket() []byte {
	p := make([]byte, 0, 14)
	p = append(p, artNetID[:]...)
	p = binary.LittleEndian.AppendUint16(p, artNetOpPoll)
	p = append(p, 0x00, 14) // ProtVerHi, ProtVerLo
	p = append(p, 0x00)     // TalkToMe
	p = append(p, 0x00)     // Priority
	return p
}

// localIPv4s returns every IPv4 address bound to this host, so ArtPoll
// replies echoed back by our own broadcast can be excluded.
func localIPv4s() map[string]bool {
	out := map[string]bool{}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return out
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			out[ip4.String()] = true
		}
	}
	return out
}

// discoverArtNetSubnet broadcasts ArtPoll and collects ArtPollReply
// responses for artPollWindow. Each unique responding IP (other than
// our own) is reported as an enttec_ode_mk3 device reachable via
// Art-Net unicast (§4.G).
func discoverArtNetSubnet(ctx context.Context) ([]DeviceDescriptor, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, corerr.New("dmx.discoverArtNetSubnet", corerr.TransportFailure, err)
	}
	defer conn.Close()

	broadcastConn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4bcast, Port: artNetPort})
	if err != nil {
		return nil, corerr.New("dmx.discoverArtNetSubnet", corerr.TransportFailure, err)
	}
	defer broadcastConn.Close()
	if _, err := broadcastConn.Write(buildArtPollPacket()); err != nil {
		return nil, corerr.New("dmx.discoverArtNetSubnet", corerr.TransportFailure, err)
	}

	own := localIPv4s()
	seen := map[string]bool{}
	var out []DeviceDescriptor

	deadline := time.Now().Add(artPollWindow)
	buf := make([]byte, 512)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(remaining))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			break // timeout or closed: end the collection window
		}
		if n < 10 || string(buf[:8]) != string(artNetID[:]) {
			continue
		}
		op := binary.LittleEndian.Uint16(buf[8:10])
		if op != artNetOpPollReply {
			continue
		}
		ip := addr.IP.String()
		if own[ip] || seen[ip] {
			continue
		}
		seen[ip] = true
		universes := universesForKind(KindEnttecODEMk3)
		out = append(out, DeviceDescriptor{
			ID:        "enttec-ode-" + ip,
			Name:      "Enttec ODE Mk3 (" + ip + ")",
			Kind:      KindEnttecODEMk3,
			Transport: MediumEthernet,
			Address:   ip,
			Universes: universes,
			Capabilities: Capabilities{
				MaxUniverses: len(universes),
				Output:       true,
			},
		})
	}
	return out, nil
}
