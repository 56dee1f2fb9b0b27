package dmx

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the family of a DMX device (§3 Device Descriptor).
type Kind string

const (
	KindEnttecUSB     Kind = "enttec_usb"
	KindEnttecUSBMk2  Kind = "enttec_usb_mk2"
	KindOpenDMX       Kind = "open_dmx"
	KindSerialGeneric Kind = "serial_generic"
	KindEnttecODE     Kind = "enttec_ode"
	KindEnttecODEMk2  Kind = "enttec_ode_mk2"
	KindEnttecODEMk3  Kind = "enttec_ode_mk3"
	KindDMXISHID      Kind = "dmxis_hid"
	KindArtNet        Kind = "artnet"
	KindSACN          Kind = "sacn"
)

// TransportMedium identifies the physical/network medium a device uses.
type TransportMedium string

const (
	MediumUSB      TransportMedium = "usb"
	MediumEthernet TransportMedium = "ethernet"
	MediumNetwork  TransportMedium = "network"
)

// Capabilities describes what a device supports.
type Capabilities struct {
	RDM          bool
	MaxUniverses int
	Input        bool
	Output       bool
}

// DeviceDescriptor is the result of discovery and the handle used to
// connect (§3 Device Descriptor).
type DeviceDescriptor struct {
	ID           string
	Name         string
	Kind         Kind
	Transport    TransportMedium
	Address      string // serial port path, IP, or "" for network pseudo-devices
	Universes    []int
	Capabilities Capabilities
}

// universesForKind returns the universe numbering and max-universes
// capability discovery reports for kind (§4.G): the Enttec USB Mk2 and
// the ODE Mk3 report two universes; every other kind, the ODE Mk2
// included, reports one.
func universesForKind(kind Kind) []int {
	switch kind {
	case KindEnttecUSBMk2, KindEnttecODEMk3:
		return []int{1, 2}
	default:
		return []int{1}
	}
}

// NewDeviceID synthesizes a stable-enough id for a discovered device
// when nothing more natural (e.g. a serial port path) is available.
func NewDeviceID() string {
	return uuid.NewString()
}

// SessionState is a DMX device session's state (§4.J).
type SessionState int

const (
	Unselected SessionState = iota
	Selecting
	Connecting
	Connected
	Disconnecting
)

func (s SessionState) String() string {
	switch s {
	case Unselected:
		return "unselected"
	case Selecting:
		return "selecting"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "invalid"
	}
}

// minDisconnectHold is the minimum time a session holds Disconnecting
// before a new Connecting transition is allowed (§4.J).
const minDisconnectHold = 100 * time.Millisecond

// Session drives a single selected device through §4.J's state machine
// and owns the concrete Transport once connected. Only one device may
// be selected at a time.
type Session struct {
	mu       sync.Mutex
	state    SessionState
	device   *DeviceDescriptor
	openFn   func(*DeviceDescriptor) (Transport, error)
	transport Transport
}

// NewSession returns a Session in the Unselected state. openFn opens
// the concrete transport for a device kind; tests may substitute a fake.
func NewSession(openFn func(*DeviceDescriptor) (Transport, error)) *Session {
	return &Session{state: Unselected, openFn: openFn}
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select moves Unselected -> Selecting -> Connecting -> Connected,
// opening the device's transport. On failure the session returns to
// Unselected.
func (s *Session) Select(d *DeviceDescriptor) error {
	s.mu.Lock()
	if s.state == Connected || s.state == Connecting {
		s.mu.Unlock()
		if err := s.disconnectLocked0(); err != nil {
			return err
		}
		s.mu.Lock()
	}
	s.state = Selecting
	s.device = d
	s.state = Connecting
	s.mu.Unlock()

	t, err := s.openFn(d)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Unselected
		s.device = nil
		return err
	}
	s.transport = t
	s.state = Connected
	return nil
}

// disconnectLocked0 disconnects without assuming the caller holds mu.
func (s *Session) disconnectLocked0() error {
	return s.Disconnect()
}

// Disconnect releases the transport handle and holds Disconnecting for
// at least minDisconnectHold before becoming Unselected (§4.J).
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return nil
	}
	s.state = Disconnecting
	t := s.transport
	s.transport = nil
	s.mu.Unlock()

	var err error
	if t != nil {
		err = t.Close()
	}
	time.Sleep(minDisconnectHold)

	s.mu.Lock()
	s.state = Unselected
	s.device = nil
	s.mu.Unlock()
	return err
}

// Send forwards a universe snapshot to the connected transport. Send
// only succeeds in the Connected state (§4.J).
func (s *Session) Send(snapshot [UniverseSize]byte, universe int) error {
	s.mu.Lock()
	if s.state != Connected || s.transport == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	t := s.transport
	s.mu.Unlock()
	return t.Send(snapshot, universe)
}
