// Package corelog provides the structured logging and throttled error
// counters shared by every subsystem in the core. The host owns the
// process-wide slog handler; this package only wraps it.
package corelog

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	opts := &slog.HandlerOptions{}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		// an operator watching stderr directly benefits from call-site
		// context that a log-aggregating host doesn't need.
		opts.AddSource = true
	}
	defaultLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}

// SetDefault installs the logger the host wants subsystems to use. Call
// once during initialize_composite_system(); safe to call again if the
// host rotates sinks.
func SetDefault(l *slog.Logger) {
	if l == nil {
		return
	}
	defaultLogger.Store(l)
}

// Default returns the currently installed logger.
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// Throttled logs at most once every `every` calls to Log, counting all
// calls in between. Used for transient transport failures (§7: "logged
// every 100th occurrence") so a flapping device doesn't flood the log.
type Throttled struct {
	every int

	mu    sync.Mutex
	count uint64
}

// NewThrottled returns a Throttled that logs on the 1st, (every+1)th,
// (2*every+1)th, ... occurrence. every <= 0 logs every time.
func NewThrottled(every int) *Throttled {
	return &Throttled{every: every}
}

// Log records an occurrence and, if this is a logged occurrence, emits
// the message at the given level via the default logger.
func (t *Throttled) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	t.mu.Lock()
	n := t.count
	t.count++
	t.mu.Unlock()

	if t.every > 0 && n%uint64(t.every) != 0 {
		return
	}
	args = append(args, slog.Uint64("occurrence", n+1))
	Default().Log(ctx, level, msg, args...)
}

// Count returns the number of occurrences recorded so far.
func (t *Throttled) Count() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
