package render

import "testing"

// Scenario E from spec §8: with use_chroma_key=false, output pixels
// equal input pixels byte-for-byte.
func TestChromaKeyPassThroughWhenDisabled(t *testing.T) {
	rgba := []byte{10, 20, 30, 255, 0, 255, 0, 255}
	want := append([]byte{}, rgba...)

	compositeChromaKey(rgba, ChromaKeyParams{Enabled: false, KeyR: 0, KeyG: 255, KeyB: 0})

	for i := range rgba {
		if rgba[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (pass-through)", i, rgba[i], want[i])
		}
	}
}

func TestChromaKeyDiscardsExactKeyMatch(t *testing.T) {
	p := ChromaKeyParams{Enabled: true, KeyR: 0, KeyG: 255, KeyB: 0, Tolerance: 10, Similarity: 10}
	r, g, b, a := applyChromaKey(0, 255, 0, 255, p)
	if a != 0 {
		t.Fatalf("alpha = %d, want 0 for exact key match", a)
	}
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("rgb mutated: got (%d,%d,%d)", r, g, b)
	}
}

func TestChromaKeyPassesThroughFarColors(t *testing.T) {
	p := ChromaKeyParams{Enabled: true, KeyR: 0, KeyG: 255, KeyB: 0, Tolerance: 10, Similarity: 10}
	_, _, _, a := applyChromaKey(200, 10, 200, 255, p)
	if a != 255 {
		t.Fatalf("alpha = %d, want 255 (far from key, should pass through)", a)
	}
}

func TestChromaKeyWithinToleranceButNotSimilarityPassesThrough(t *testing.T) {
	// Close enough in RGB to trigger the YUV check, but with a YUV
	// distance that is not under Similarity: the pixel must pass
	// through, not be discarded, because only the combined RGB+YUV
	// test discards (§4.C).
	p := ChromaKeyParams{Enabled: true, KeyR: 0, KeyG: 255, KeyB: 0, Tolerance: 255, Similarity: 0.0001}
	_, _, _, a := applyChromaKey(50, 200, 50, 255, p)
	if a != 255 {
		t.Fatalf("alpha = %d, want 255 (within RGB tolerance but YUV distance exceeds similarity)", a)
	}
}
