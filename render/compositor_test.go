package render

import "testing"

func solidFrame(w, h int, r, g, b, a byte) Frame {
	buf := make([]byte, w*h*4)
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, a
	}
	return Frame{Width: w, Height: h, RGBA: buf}
}

func TestComposeSkipsInvisibleAndTextureless(t *testing.T) {
	c := NewCompositor(2, 2)
	tex := solidFrame(2, 2, 255, 0, 0, 255)
	c.SetLayer(&Layer{ID: "hidden", Visible: false, Texture: &tex, Opacity: 1})
	c.SetLayer(&Layer{ID: "no-texture", Visible: true, Opacity: 1})

	out := c.Compose()
	for i := 0; i+3 < len(out.RGBA); i += 4 {
		if out.RGBA[i] != 0 || out.RGBA[i+1] != 0 || out.RGBA[i+2] != 0 || out.RGBA[i+3] != 255 {
			t.Fatalf("expected opaque black clear, got %v", out.RGBA[i:i+4])
		}
	}
}

func TestComposeOrdersByAscendingZ(t *testing.T) {
	c := NewCompositor(1, 1)
	red := solidFrame(1, 1, 255, 0, 0, 255)
	blue := solidFrame(1, 1, 0, 0, 255, 255)
	c.SetLayer(&Layer{ID: "top", Visible: true, Texture: &blue, Opacity: 1, ZOrder: 10})
	c.SetLayer(&Layer{ID: "bottom", Visible: true, Texture: &red, Opacity: 1, ZOrder: 0})

	out := c.Compose()
	if out.RGBA[0] != 0 || out.RGBA[2] != 255 {
		t.Fatalf("expected top (blue, higher z) to win, got %v", out.RGBA[:4])
	}
}

func TestComposeAppliesOpacity(t *testing.T) {
	c := NewCompositor(1, 1)
	white := solidFrame(1, 1, 255, 255, 255, 255)
	c.SetLayer(&Layer{ID: "half", Visible: true, Texture: &white, Opacity: 0.5})

	out := c.Compose()
	// half-opacity white over opaque black clear should land near mid-gray.
	if out.RGBA[0] < 100 || out.RGBA[0] > 150 {
		t.Fatalf("expected ~127 from 50%% white over black, got %d", out.RGBA[0])
	}
}

func TestComposeAppliesChromaKeyBeforeBlend(t *testing.T) {
	c := NewCompositor(1, 1)
	green := solidFrame(1, 1, 0, 255, 0, 255)
	c.SetLayer(&Layer{
		ID: "keyed", Visible: true, Texture: &green, Opacity: 1,
		ChromaKey: &ChromaKeyParams{Enabled: true, KeyR: 0, KeyG: 255, KeyB: 0, Tolerance: 10, Similarity: 10},
	})

	out := c.Compose()
	// The keyed-out green layer should vanish entirely, leaving the
	// opaque black clear untouched.
	if out.RGBA[0] != 0 || out.RGBA[1] != 0 || out.RGBA[2] != 0 || out.RGBA[3] != 255 {
		t.Fatalf("expected chroma-keyed layer to vanish, got %v", out.RGBA[:4])
	}
}
