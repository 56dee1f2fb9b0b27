package streamdeck

import "testing"

func fx(n int, global bool) []FxButton {
	out := make([]FxButton, n)
	for i := range out {
		out[i] = FxButton{ID: "fx", IsGlobal: global}
	}
	return out
}

func TestLayoutSplitsGridInHalfForNonXL(t *testing.T) {
	kind, _ := KindFor(PIDMini) // 3x2
	slots := Layout(kind, fx(2, true), fx(2, false))

	// midCol = 1: col 0 is battle board, col 1-2 is user FX.
	if slots[0] == nil || !slots[0].IsGlobal {
		t.Fatal("slot 0 should be battle board")
	}
	if slots[1] == nil || slots[1].IsGlobal {
		t.Fatal("slot 1 should be user FX")
	}
}

func TestLayoutXLReservesRightColumnForControls(t *testing.T) {
	kind, _ := KindFor(PIDXL) // 8x4
	slots := Layout(kind, fx(20, true), fx(12, false))

	for row := 0; row < kind.Rows; row++ {
		idx := row*kind.Cols + 7
		if slots[idx] == nil || !slots[idx].Control {
			t.Fatalf("row %d col 7 = %+v, want a control button", row, slots[idx])
		}
	}
	if slots[7].Name != "INTRO" || slots[15].Name != "PARTY" {
		t.Fatalf("control order wrong: slots[7]=%v slots[15]=%v", slots[7], slots[15])
	}
}

func TestLayoutXLPlacesBattleBoardLeftUserFXMiddle(t *testing.T) {
	kind, _ := KindFor(PIDXL)
	slots := Layout(kind, fx(5, true), fx(2, false))

	if slots[0] == nil || !slots[0].IsGlobal {
		t.Fatal("slot 0 should be battle board")
	}
	if slots[5] == nil || slots[5].IsGlobal {
		t.Fatal("slot 5 (col 5, row 0) should be user FX")
	}
}

func TestControlColorKnownNames(t *testing.T) {
	r, g, b := ControlColor("INTRO")
	if r != 0x8A || g != 0x2B || b != 0xE2 {
		t.Fatalf("INTRO color = %02x%02x%02x, want 8A2BE2", r, g, b)
	}
}
