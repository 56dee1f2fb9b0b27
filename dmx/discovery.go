package dmx

import (
	"context"
	"sync"

	"github.com/battles-core/core/corelog"
)

// Discover runs every discovery probe in parallel and returns the
// union of discovered devices plus the always-present network-protocol
// pseudo-devices (§4.G). Probes that error are logged and contribute no
// devices rather than failing the whole scan.
func Discover(ctx context.Context) []DeviceDescriptor {
	probes := []func(context.Context) ([]DeviceDescriptor, error){
		discoverSerial,
		discoverHID,
		discoverArtNetSubnet,
		discoverMDNS,
	}

	var (
		mu      sync.Mutex
		results []DeviceDescriptor
		wg      sync.WaitGroup
	)
	for _, probe := range probes {
		probe := probe
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := probe(ctx)
			if err != nil {
				corelog.Default().Warn("dmx discovery probe failed", "err", err)
				return
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	results = append(results, networkProtocolDevices()...)
	return results
}

// networkProtocolDevices are always emitted regardless of hardware
// present: Art-Net and sACN are addressed by the operator, not
// discovered on the wire (§4.G).
func networkProtocolDevices() []DeviceDescriptor {
	return []DeviceDescriptor{
		{
			ID:           "artnet",
			Name:         "Art-Net",
			Kind:         KindArtNet,
			Transport:    MediumNetwork,
			Universes:    nil,
			Capabilities: Capabilities{MaxUniverses: 256, Output: true},
		},
		{
			ID:           "sacn",
			Name:         "sACN (E1.31)",
			Kind:         KindSACN,
			Transport:    MediumNetwork,
			Universes:    nil,
			Capabilities: Capabilities{MaxUniverses: 63999, Output: true},
		},
	}
}
