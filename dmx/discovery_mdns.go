package dmx

import (
	"context"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/battles-core/core/corerr"
)

const (
	enttecODEServiceType = "_enttec-ode._tcp"
	mdnsBrowseWindow     = 2 * time.Second
)

// discoverMDNS browses _enttec-ode._tcp.local. for ODE nodes that
// advertise themselves over mDNS, classifying by hostname (§4.G).
func discoverMDNS(ctx context.Context) ([]DeviceDescriptor, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, corerr.New("dmx.discoverMDNS", corerr.TransportFailure, err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 16)
	browseCtx, cancel := context.WithTimeout(ctx, mdnsBrowseWindow)
	defer cancel()

	var out []DeviceDescriptor
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			kind := classifyODEHostname(entry.HostName)
			universes := universesForKind(kind)
			out = append(out, DeviceDescriptor{
				ID:        "mdns-" + entry.Instance,
				Name:      entry.Instance,
				Kind:      kind,
				Transport: MediumEthernet,
				Address:   entry.HostName,
				Universes: universes,
				Capabilities: Capabilities{
					MaxUniverses: len(universes),
					Output:       true,
				},
			})
		}
	}()

	if err := resolver.Browse(browseCtx, enttecODEServiceType, "local.", entries); err != nil {
		return nil, corerr.New("dmx.discoverMDNS", corerr.TransportFailure, err)
	}
	<-browseCtx.Done()
	<-done
	return out, nil
}

func classifyODEHostname(host string) Kind {
	h := strings.ToLower(host)
	switch {
	case strings.Contains(h, "mk3"):
		return KindEnttecODEMk3
	case strings.Contains(h, "mk2"):
		return KindEnttecODEMk2
	default:
		return KindEnttecODE
	}
}
