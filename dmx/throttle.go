package dmx

import (
	"context"
	"log/slog"

	"github.com/battles-core/core/corelog"
)

// throttle wraps corelog.Throttled for a single transport's error path:
// transient write failures are counted but only logged on every 100th
// occurrence and never disconnect the device (§7).
type throttle struct {
	t *corelog.Throttled
}

func newThrottle() *throttle {
	return &throttle{t: corelog.NewThrottled(100)}
}

func (th *throttle) log(op string, err error) {
	th.t.Log(context.Background(), slog.LevelWarn, "dmx transport error", slog.String("op", op), slog.Any("err", err))
}
