package clock

import (
	"testing"
	"time"
)

func TestPTSForFrame(t *testing.T) {
	cases := []struct {
		frame uint64
		fps   int
		want  uint64
	}{
		{0, 30, 0},
		{1, 30, uint64(time.Second) / 30},
		{10, 60, 10 * (uint64(time.Second) / 60)},
	}
	for _, c := range cases {
		if got := PTSForFrame(c.frame, c.fps); got != c.want {
			t.Errorf("PTSForFrame(%d, %d) = %d, want %d", c.frame, c.fps, got, c.want)
		}
	}
}

func TestTickerMonotonic(t *testing.T) {
	c := New()
	tk := c.NewTicker(240) // fast fps to keep the test quick
	interval := uint64(time.Second) / 240

	var last uint64
	for i := 0; i < 5; i++ {
		pts := tk.WaitNextTick()
		if i > 0 {
			delta := pts - last
			if delta != interval {
				t.Errorf("tick %d: delta = %d, want %d", i, delta, interval)
			}
		}
		last = pts
	}
}

func TestTickerResyncsWhenFarBehind(t *testing.T) {
	c := New()
	tk := c.NewTicker(1000) // 1ms interval
	interval := uint64(time.Second) / 1000

	// Simulate the caller being 2+ intervals behind by advancing the
	// ticker's notion of "next" into the past without sleeping.
	tk.next = 1 // first boundary already long gone
	time.Sleep(5 * time.Millisecond)

	pts := tk.WaitNextTick()
	now := c.NowNS()
	wantFloor := now / interval
	if pts < wantFloor*interval || pts > (wantFloor+1)*interval {
		t.Errorf("expected resync near now=%d, got pts=%d", now, pts)
	}
}

func TestRateLimiterAllowsOncePerInterval(t *testing.T) {
	c := New()
	rl := c.NewRateLimiter(25 * time.Millisecond)

	if !rl.Allow("u1") {
		t.Fatal("first call should be allowed")
	}
	if rl.Allow("u1") {
		t.Fatal("immediate second call should be denied")
	}
	if !rl.Allow("u2") {
		t.Fatal("different key should be allowed independently")
	}

	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Fatal("call after interval elapsed should be allowed")
	}
}
