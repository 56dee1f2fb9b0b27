package dmx

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"

	"github.com/battles-core/core/corerr"
)

// FTDI and Silicon Labs vendor IDs seen on Enttec and generic DMX USB
// adapters (§4.G).
const (
	vidFTDI      = 0x0403
	pidEnttecUSB = 0x6001
	pidEnttecMk2 = 0x6015
	vidSiLabs    = 0x10C4
)

func hex4(v int) string { return fmt.Sprintf("%04X", v) }

// discoverSerial sweeps connected USB-serial ports and classifies each
// by VID/PID: Enttec USB Pro/Mk2 by their distinct FTDI PIDs, any other
// FTDI or Silicon Labs device as an Open DMX-compatible adapter, and
// anything else exposing a serial port as serial_generic (§4.G).
func discoverSerial(ctx context.Context) ([]DeviceDescriptor, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, corerr.New("dmx.discoverSerial", corerr.DeviceNotFound, err)
	}

	var out []DeviceDescriptor
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		vid := strings.ToUpper(p.VID)
		pid := strings.ToUpper(p.PID)

		var kind Kind
		switch {
		case vid == hex4(vidFTDI) && pid == hex4(pidEnttecUSB):
			kind = KindEnttecUSB
		case vid == hex4(vidFTDI) && pid == hex4(pidEnttecMk2):
			kind = KindEnttecUSBMk2
		case vid == hex4(vidFTDI) || vid == hex4(vidSiLabs):
			kind = KindOpenDMX
		default:
			kind = KindSerialGeneric
		}

		universes := universesForKind(kind)
		out = append(out, DeviceDescriptor{
			ID:        p.Name,
			Name:      deviceNameFor(kind, p.Name),
			Kind:      kind,
			Transport: MediumUSB,
			Address:   p.Name,
			Universes: universes,
			Capabilities: Capabilities{
				MaxUniverses: len(universes),
				Output:       true,
			},
		})
	}
	return out, nil
}

func deviceNameFor(kind Kind, port string) string {
	switch kind {
	case KindEnttecUSB:
		return "Enttec USB Pro (" + port + ")"
	case KindEnttecUSBMk2:
		return "Enttec USB Pro Mk2 (" + port + ")"
	case KindOpenDMX:
		return "Open DMX USB (" + port + ")"
	default:
		return "Serial DMX Adapter (" + port + ")"
	}
}
