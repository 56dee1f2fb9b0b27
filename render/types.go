// Package render implements the GPU-backed chroma-key compositor: a
// present-path surface for live output and an optional async readback
// path for broadcasting encoded frames to the host (§4.C).
package render

// Frame is a single decoded RGBA image with its presentation timestamp.
type Frame struct {
	Width  int
	Height int
	RGBA   []byte // 4 bytes per pixel, row-major, no padding
	PTS    uint64
}

// Transform is a layer's placement within the composed output.
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
	RotationRad    float64
}

// ChromaKeyParams selects the chroma-key reference color and the two
// distance thresholds used by the fragment shader (§4.C).
type ChromaKeyParams struct {
	KeyR, KeyG, KeyB byte
	Tolerance        float64
	Similarity       float64
	Enabled          bool
}

// Layer is a single renderable input to the compositor (§3 Layer). A
// layer is renderable iff Visible && Texture != nil; layers render in
// ascending ZOrder; alpha is premultiplied after chroma-key discard.
type Layer struct {
	ID        string
	Transform Transform
	Opacity   float64
	ZOrder    int
	Visible   bool
	ChromaKey *ChromaKeyParams
	Texture   *Frame
}

// Renderable reports whether l should be drawn this frame.
func (l *Layer) Renderable() bool {
	return l.Visible && l.Texture != nil
}
