package dmx

import "github.com/battles-core/core/corerr"

// DMXISTransport represents an Enttec DMXIS HID-class interface. The
// DMXIS wire format is not publicly documented and was never recovered
// from the original implementation (§4.F, §9 open question) — discovery
// still reports dmxis_hid devices so the UI can surface them, but Send
// returns an explicit not-implemented error rather than guessing a
// frame layout.
type DMXISTransport struct {
	path string
}

// NewDMXISTransport records the HID path for a discovered DMXIS device.
// It never fails to construct; failure is deferred to Send so discovery
// and selection still work for this device class.
func NewDMXISTransport(path string) *DMXISTransport {
	return &DMXISTransport{path: path}
}

func (t *DMXISTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	return corerr.New("dmx.DMXISTransport.Send", corerr.TransportFailure, errDMXISUnsupported)
}

func (t *DMXISTransport) Close() error { return nil }

var errDMXISUnsupported = dmxisUnsupportedError{}

type dmxisUnsupportedError struct{}

func (dmxisUnsupportedError) Error() string {
	return "dmxis hid wire format is not implemented"
}
