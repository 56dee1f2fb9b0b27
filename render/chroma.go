package render

import "math"

// applyChromaKey runs the RGB-then-YUV distance test from §4.C against
// a single pixel: if disabled, the pixel passes through unchanged. If
// enabled, an RGB-space Euclidean distance from the key color is
// computed first; only when that is under Tolerance is the costlier
// BT.601 YUV distance computed, and only when that is under Similarity
// does the pixel's alpha collapse to zero.
func applyChromaKey(r, g, b, a byte, p ChromaKeyParams) (byte, byte, byte, byte) {
	if !p.Enabled {
		return r, g, b, a
	}

	dr := float64(r) - float64(p.KeyR)
	dg := float64(g) - float64(p.KeyG)
	db := float64(b) - float64(p.KeyB)
	rgbDist := math.Sqrt(dr*dr + dg*dg + db*db)
	if rgbDist >= p.Tolerance {
		return r, g, b, a
	}

	y1, u1, v1 := rgbToYUV601(r, g, b)
	y2, u2, v2 := rgbToYUV601(p.KeyR, p.KeyG, p.KeyB)
	dy := y1 - y2
	du := u1 - u2
	dv := v1 - v2
	yuvDist := math.Sqrt(dy*dy + du*du + dv*dv)
	if yuvDist < p.Similarity {
		return r, g, b, 0
	}
	return r, g, b, a
}

// rgbToYUV601 converts 8-bit RGB to BT.601 YUV.
func rgbToYUV601(r, g, b byte) (y, u, v float64) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	y = 0.299*rf + 0.587*gf + 0.114*bf
	u = -0.168736*rf - 0.331264*gf + 0.5*bf + 128
	v = 0.5*rf - 0.418688*gf - 0.081312*bf + 128
	return y, u, v
}

// compositeChromaKey runs applyChromaKey across an entire RGBA frame,
// in-place. Compositor.Compose calls it for every layer that carries a
// chroma key, and VulkanSurface.Render calls it on every frame it
// renders; EbitenSurface runs the same test as a Kage fragment shader
// instead (§4.C).
func compositeChromaKey(rgba []byte, p ChromaKeyParams) {
	for i := 0; i+3 < len(rgba); i += 4 {
		rgba[i], rgba[i+1], rgba[i+2], rgba[i+3] = applyChromaKey(rgba[i], rgba[i+1], rgba[i+2], rgba[i+3], p)
	}
}
