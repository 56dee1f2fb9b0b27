package streamdeck

import "testing"

func TestHsvToRGBPureRed(t *testing.T) {
	r, g, b := hsvToRGB(0, 1, 1)
	if r != 255 || g != 0 || b != 0 {
		t.Fatalf("hsvToRGB(0,1,1) = %d,%d,%d, want 255,0,0", r, g, b)
	}
}

func TestHsvToRGBPureGreen(t *testing.T) {
	r, g, b := hsvToRGB(120, 1, 1)
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("hsvToRGB(120,1,1) = %d,%d,%d, want 0,255,0", r, g, b)
	}
}

func TestLogoButtonIndexIsFirstKeyOfSecondRow(t *testing.T) {
	kind, _ := KindFor(PIDMini) // cols = 3
	if got := logoButtonIndex(kind); got != 3 {
		t.Fatalf("logoButtonIndex = %d, want 3", got)
	}
}
