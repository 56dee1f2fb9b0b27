package streamdeck

import "github.com/sstallion/go-hid"

// DeviceDescriptor is one discovered, not-yet-connected Stream Deck.
type DeviceDescriptor struct {
	PID    PID
	Kind   string
	Serial string
}

// Scan enumerates every connected Elgato HID device whose product ID
// matches a known Stream Deck kind.
func Scan() ([]DeviceDescriptor, error) {
	var found []DeviceDescriptor
	err := hid.Enumerate(vidElgato, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		kind, err := KindFor(PID(info.ProductID))
		if err != nil {
			return nil
		}
		found = append(found, DeviceDescriptor{PID: kind.PID, Kind: kind.Name, Serial: info.SerialNbr})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
