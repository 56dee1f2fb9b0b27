package core

import "testing"

func TestParseKeyColorHex(t *testing.T) {
	r, g, b := parseKeyColor("#00ff00")
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("parseKeyColor(#00ff00) = %d,%d,%d, want 0,255,0", r, g, b)
	}
}

func TestParseKeyColorCSV(t *testing.T) {
	r, g, b := parseKeyColor("255,128,0")
	if r != 255 || (g != 127 && g != 128) || b != 0 {
		t.Fatalf("parseKeyColor(255,128,0) = %d,%d,%d", r, g, b)
	}
}

func TestParseKeyColorMalformedFallsBackToGreen(t *testing.T) {
	r, g, b := parseKeyColor("not-a-color")
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("parseKeyColor(garbage) = %d,%d,%d, want fallback green 0,255,0", r, g, b)
	}
}

func TestByteFromUnitClamps(t *testing.T) {
	if v := byteFromUnit(-1); v != 0 {
		t.Fatalf("byteFromUnit(-1) = %d, want 0", v)
	}
	if v := byteFromUnit(2); v != 255 {
		t.Fatalf("byteFromUnit(2) = %d, want 255", v)
	}
}

func TestLayerZOrderPlacesFXAboveCamera(t *testing.T) {
	if layerZOrder(fxLayerID) <= layerZOrder(cameraLayerID) {
		t.Fatal("fx layer must render above the camera layer")
	}
}

func TestStopCompositeWithoutStartIsNoop(t *testing.T) {
	c := NewCore(nil)
	if err := c.InitializeCompositeSystem(); err != nil {
		t.Fatalf("InitializeCompositeSystem: %v", err)
	}
	if err := c.StopComposite(); err != nil {
		t.Fatalf("StopComposite with nothing running: %v", err)
	}
}

func TestStopFXWithoutPlayIsNoop(t *testing.T) {
	c := NewCore(nil)
	if err := c.InitializeCompositeSystem(); err != nil {
		t.Fatalf("InitializeCompositeSystem: %v", err)
	}
	if err := c.StopFX(); err != nil {
		t.Fatalf("StopFX with nothing playing: %v", err)
	}
}

func TestStartCompositeWithoutAttachedWindowFails(t *testing.T) {
	c := NewCore(nil)
	if err := c.InitializeCompositeSystem(); err != nil {
		t.Fatalf("InitializeCompositeSystem: %v", err)
	}
	if err := c.StartComposite("0", 640, 480, 30, 0, false); err == nil {
		t.Fatal("StartComposite without AttachWindow: want error")
	}
}
