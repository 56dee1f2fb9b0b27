package render

import (
	"sort"
	"sync"
)

// Compositor collects registered Layers and blends them into one RGBA
// frame in ascending z-order for presentation by a Surface (§3 Layer).
// The single-input chroma path is what's live end to end; multi-layer
// alpha-over blending across simultaneous camera + overlay inputs is
// the deliberate extension point this type exists for (§9).
type Compositor struct {
	mu            sync.Mutex
	layers        map[string]*Layer
	width, height int
}

// NewCompositor returns an empty compositor sized width x height.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{layers: make(map[string]*Layer), width: width, height: height}
}

// SetLayer registers or replaces a layer by ID.
func (c *Compositor) SetLayer(l *Layer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[l.ID] = l
}

// RemoveLayer drops a layer by ID; a no-op if it is not present.
func (c *Compositor) RemoveLayer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.layers, id)
}

// Resize changes the composed output dimensions.
func (c *Compositor) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

// Compose blends every renderable layer (Visible && Texture != nil) in
// ascending ZOrder into a single opaque-backed RGBA frame: chroma-key
// discard runs first, then alpha is premultiplied by the layer's
// opacity, then the result is alpha-over composited onto the
// accumulator (§3 Layer invariant).
func (c *Compositor) Compose() Frame {
	c.mu.Lock()
	ordered := make([]*Layer, 0, len(c.layers))
	for _, l := range c.layers {
		if l.Renderable() {
			ordered = append(ordered, l)
		}
	}
	width, height := c.width, c.height
	c.mu.Unlock()

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ZOrder < ordered[j].ZOrder })

	out := make([]byte, width*height*4)
	for i := 3; i < len(out); i += 4 {
		out[i] = 255 // opaque clear (§4.C "blend state is REPLACE onto an opaque clear")
	}

	for _, l := range ordered {
		tex := l.Texture
		buf := make([]byte, len(tex.RGBA))
		copy(buf, tex.RGBA)
		if l.ChromaKey != nil {
			compositeChromaKey(buf, *l.ChromaKey)
		}
		premultiplyAlpha(buf, l.Opacity)
		alphaOverInto(out, width, height, buf, tex.Width, tex.Height)
	}

	return Frame{Width: width, Height: height, RGBA: out}
}

// premultiplyAlpha scales each pixel's alpha by opacity and premultiplies
// RGB by the resulting alpha, in place.
func premultiplyAlpha(rgba []byte, opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	for i := 0; i+3 < len(rgba); i += 4 {
		a := float64(rgba[i+3]) * opacity / 255
		rgba[i] = byte(float64(rgba[i]) * a)
		rgba[i+1] = byte(float64(rgba[i+1]) * a)
		rgba[i+2] = byte(float64(rgba[i+2]) * a)
		rgba[i+3] = byte(a * 255)
	}
}

// alphaOverInto composites src (already premultiplied, srcW x srcH) onto
// dst (dstW x dstH) at the origin using the standard "over" operator.
// Layers larger or smaller than the output are simply clipped, not
// scaled — the teacher's full-frame compositor scales mismatched
// sources (video_compositor.go blendFrameScaled); this compositor's
// layers are expected to already match the output's resolution, so
// clipping-not-scaling keeps the blend a single pass with no source
// aliasing at layer boundaries.
func alphaOverInto(dst []byte, dstW, dstH int, src []byte, srcW, srcH int) {
	w := min(dstW, srcW)
	h := min(dstH, srcH)
	for y := 0; y < h; y++ {
		srcRow := y * srcW * 4
		dstRow := y * dstW * 4
		for x := 0; x < w; x++ {
			si := srcRow + x*4
			di := dstRow + x*4
			srcA := float64(src[si+3]) / 255
			inv := 1 - srcA
			dst[di] = clampByte(float64(src[si]) + float64(dst[di])*inv)
			dst[di+1] = clampByte(float64(src[si+1]) + float64(dst[di+1])*inv)
			dst[di+2] = clampByte(float64(src[si+2]) + float64(dst[di+2])*inv)
			dst[di+3] = clampByte(float64(src[si+3]) + float64(dst[di+3])*inv)
		}
	}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
