package dmx

import (
	"errors"
	"time"

	"github.com/battles-core/core/clock"
)

// ErrNotConnected is returned by Session.Send when no device is connected.
var ErrNotConnected = errors.New("dmx: no device connected")

// minSendInterval is the shared rate-limit floor for every transport:
// 40 Hz, i.e. at most one emission per 25ms per (transport, universe)
// pair (§4.F, §8.2).
const minSendInterval = 25 * time.Millisecond

// Transport sends a full universe snapshot over one wire protocol.
// Implementations are not safe for concurrent Send calls on the same
// instance from multiple goroutines issuing overlapping I/O, but the
// rate limiter itself is safe for concurrent use (§5).
type Transport interface {
	// Send encodes and emits snapshot for the given universe, subject
	// to the shared rate limit. A call arriving faster than the limit
	// returns nil without emitting anything (§4.F).
	Send(snapshot [UniverseSize]byte, universe int) error
	// Close releases any platform handle (serial port, socket) held by
	// the transport.
	Close() error
}

// rateGate is embedded by every transport to share the 40Hz gate
// semantics without a global lock held during I/O (§5).
type rateGate struct {
	limiter *clock.RateLimiter
	self    any // identifies this transport instance as part of the rate-limit key
}

func newRateGate(c *clock.Clock, self any) rateGate {
	return rateGate{limiter: c.NewRateLimiter(minSendInterval), self: self}
}

type rateKey struct {
	transport any
	universe  int
}

func (g rateGate) allow(universe int) bool {
	return g.limiter.Allow(rateKey{transport: g.self, universe: universe})
}
