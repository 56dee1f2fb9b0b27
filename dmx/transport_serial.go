package dmx

import (
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corerr"
)

// serialParams is the line configuration every Enttec/Open-DMX serial
// transport uses: 250000 baud, 8 data bits, 2 stop bits, no parity, no
// flow control (§4.F).
var serialParams = serial.Mode{
	BaudRate: 250000,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.TwoStopBits,
}

// openSerial opens portName, asserting DTR and RTS, after closing any
// prior handle and waiting for the port to settle. Re-open on
// reconnect is exactly this sequence: close, sleep ~100ms, open, sleep
// ~50ms before the first write (§4.F).
func openSerial(portName string, prior serial.Port) (serial.Port, error) {
	if prior != nil {
		_ = prior.Close()
		time.Sleep(100 * time.Millisecond)
	}
	port, err := serial.Open(portName, &serialParams)
	if err != nil {
		return nil, corerr.New("dmx.openSerial", corerr.DeviceBusy, err)
	}
	if err := port.SetDTR(true); err != nil {
		_ = port.Close()
		return nil, corerr.New("dmx.openSerial", corerr.TransportFailure, err)
	}
	if err := port.SetRTS(true); err != nil {
		_ = port.Close()
		return nil, corerr.New("dmx.openSerial", corerr.TransportFailure, err)
	}
	time.Sleep(50 * time.Millisecond)
	return port, nil
}

// EnttecUSBTransport drives an Enttec USB Pro or Mk2 over serial using
// the documented start-code framing (§4.F). The wire is any
// io.WriteCloser so tests can substitute a fake without a real port.
type EnttecUSBTransport struct {
	rateGate
	wire io.WriteCloser
	errs *throttle
}

// NewEnttecUSBTransport opens portName and returns a ready transport.
func NewEnttecUSBTransport(c *clock.Clock, portName string) (*EnttecUSBTransport, error) {
	port, err := openSerial(portName, nil)
	if err != nil {
		return nil, err
	}
	return newEnttecUSBTransport(c, port), nil
}

func newEnttecUSBTransport(c *clock.Clock, wire io.WriteCloser) *EnttecUSBTransport {
	t := &EnttecUSBTransport{wire: wire, errs: newThrottle()}
	t.rateGate = newRateGate(c, t)
	return t
}

// buildEnttecUSBPacket frames the Enttec USB Pro "Send DMX Packet"
// label: 0x7E 0x06 len_lsb len_msb 0x00 <512 channels> 0xE7, len = 513.
func buildEnttecUSBPacket(snapshot [UniverseSize]byte) []byte {
	const payloadLen = 1 + UniverseSize // start code + 512 channels
	packet := make([]byte, 0, 4+payloadLen+1)
	packet = append(packet, 0x7E, 0x06, byte(payloadLen&0xFF), byte(payloadLen>>8), 0x00)
	packet = append(packet, snapshot[:]...)
	packet = append(packet, 0xE7)
	return packet
}

// Send writes the Enttec USB Pro framing for snapshot.
func (t *EnttecUSBTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	if !t.allow(universe) {
		return nil
	}
	if _, err := t.wire.Write(buildEnttecUSBPacket(snapshot)); err != nil {
		t.errs.log("dmx.EnttecUSBTransport.Send", err)
		return nil // persistent write errors do not tear down the pipeline (§7)
	}
	return nil
}

// Close releases the serial port.
func (t *EnttecUSBTransport) Close() error {
	return t.wire.Close()
}

// OpenDMXTransport drives an Open DMX or other generic FTDI serial
// adapter using the minimal [0x00, <512 channels>] framing (§4.F).
type OpenDMXTransport struct {
	rateGate
	wire io.WriteCloser
	errs *throttle
}

// NewOpenDMXTransport opens portName and returns a ready transport.
func NewOpenDMXTransport(c *clock.Clock, portName string) (*OpenDMXTransport, error) {
	port, err := openSerial(portName, nil)
	if err != nil {
		return nil, err
	}
	return newOpenDMXTransport(c, port), nil
}

func newOpenDMXTransport(c *clock.Clock, wire io.WriteCloser) *OpenDMXTransport {
	t := &OpenDMXTransport{wire: wire, errs: newThrottle()}
	t.rateGate = newRateGate(c, t)
	return t
}

// buildOpenDMXPacket frames [0x00, <512 channels>].
func buildOpenDMXPacket(snapshot [UniverseSize]byte) []byte {
	packet := make([]byte, 0, 1+UniverseSize)
	packet = append(packet, 0x00)
	packet = append(packet, snapshot[:]...)
	return packet
}

// Send writes [0x00, <512 channels>].
func (t *OpenDMXTransport) Send(snapshot [UniverseSize]byte, universe int) error {
	if !t.allow(universe) {
		return nil
	}
	if _, err := t.wire.Write(buildOpenDMXPacket(snapshot)); err != nil {
		t.errs.log("dmx.OpenDMXTransport.Send", err)
		return nil
	}
	return nil
}

// Close releases the serial port.
func (t *OpenDMXTransport) Close() error {
	return t.wire.Close()
}
