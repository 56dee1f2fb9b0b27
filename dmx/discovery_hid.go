package dmx

import (
	"context"
	"strings"

	"github.com/sstallion/go-hid"

	"github.com/battles-core/core/corerr"
)

// discoverHID enumerates HID devices and classifies anything whose
// product string mentions DMX or DMXIS as a dmxis_hid device (§4.G).
// Stream Deck HID devices are enumerated separately by the streamdeck
// package and are not reported here.
func discoverHID(ctx context.Context) ([]DeviceDescriptor, error) {
	var out []DeviceDescriptor
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		product := strings.ToUpper(info.ProductStr)
		if !strings.Contains(product, "DMX") {
			return nil
		}
		out = append(out, DeviceDescriptor{
			ID:        info.Path,
			Name:      info.ProductStr,
			Kind:      KindDMXISHID,
			Transport: MediumUSB,
			Address:   info.Path,
			Universes: []int{1},
			Capabilities: Capabilities{
				MaxUniverses: 1,
				Output:       true,
			},
		})
		return nil
	})
	if err != nil {
		return nil, corerr.New("dmx.discoverHID", corerr.DeviceNotFound, err)
	}
	return out, nil
}
