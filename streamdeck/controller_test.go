package streamdeck

import (
	"testing"

	"github.com/battles-core/core/clock"
)

func TestDispatchEdgesFiresOnlyOnPressTransition(t *testing.T) {
	s, _ := newTestSession(t, PIDMini)
	var events []ButtonEvent
	c := NewController(s, clock.New(), func(e ButtonEvent) { events = append(events, e) })
	c.slots = Layout(s.Kind(), []FxButton{{ID: "b1", IsGlobal: true}}, nil)

	c.dispatchEdges([]bool{true, false, false, false, false, false})
	c.dispatchEdges([]bool{true, false, false, false, false, false}) // held, no new edge
	c.dispatchEdges([]bool{false, false, false, false, false, false})
	c.dispatchEdges([]bool{true, false, false, false, false, false}) // second press

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (press, then press again)", len(events))
	}
	if !events[0].IsPlaying {
		t.Fatal("first press should toggle to playing")
	}
	if events[1].IsPlaying {
		t.Fatal("second press should toggle back to stopped")
	}
}

func TestSetButtonStateUpdatesTrackedSlot(t *testing.T) {
	s, _ := newTestSession(t, PIDMini)
	c := NewController(s, clock.New(), nil)
	c.slots = Layout(s.Kind(), []FxButton{{ID: "b1", IsGlobal: true}}, nil)

	if err := c.SetButtonState("b1", true); err != nil {
		t.Fatalf("SetButtonState: %v", err)
	}
	if !c.states[0].IsPlaying {
		t.Fatal("state for slot 0 should be playing")
	}
}

func TestSetButtonStateUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestSession(t, PIDMini)
	c := NewController(s, clock.New(), nil)
	c.slots = Layout(s.Kind(), []FxButton{{ID: "b1", IsGlobal: true}}, nil)

	if err := c.SetButtonState("missing", true); err != nil {
		t.Fatalf("SetButtonState: %v", err)
	}
}
