package capture

import "github.com/battles-core/core/corerr"

// validRotation reports whether deg is one of the four supported
// rotation values (§4.D).
func validRotation(deg int) bool {
	switch deg {
	case 0, 90, 180, 270:
		return true
	default:
		return false
	}
}

// captureDimensions returns the dimensions the capture device itself
// should be opened at so that, after rotating by deg, the frame
// matches the declared target width x height. For 90/270 the
// pre-rotation capture dimensions are swapped (§4.D).
func captureDimensions(targetW, targetH, deg int) (captureW, captureH int, err error) {
	if !validRotation(deg) {
		return 0, 0, corerr.New("capture.captureDimensions", corerr.InvalidInput, errInvalidRotation(deg))
	}
	if deg == 90 || deg == 270 {
		return targetH, targetW, nil
	}
	return targetW, targetH, nil
}

// rotateRGBA rotates an RGBA buffer captured at srcW x srcH by deg
// degrees clockwise, returning a new buffer at the post-rotation
// dimensions.
func rotateRGBA(src []byte, srcW, srcH, deg int) []byte {
	switch deg {
	case 0:
		out := make([]byte, len(src))
		copy(out, src)
		return out
	case 180:
		return rotate180(src, srcW, srcH)
	case 90:
		return rotate90CW(src, srcW, srcH)
	case 270:
		return rotate270CW(src, srcW, srcH)
	default:
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}
}

func rotate180(src []byte, w, h int) []byte {
	out := make([]byte, len(src))
	total := w * h
	for i := 0; i < total; i++ {
		srcOff := i * 4
		dstOff := (total - 1 - i) * 4
		copy(out[dstOff:dstOff+4], src[srcOff:srcOff+4])
	}
	return out
}

// rotate90CW rotates clockwise: output dimensions are h x w.
func rotate90CW(src []byte, w, h int) []byte {
	out := make([]byte, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcOff := (y*w + x) * 4
			dstX := h - 1 - y
			dstY := x
			dstOff := (dstY*h + dstX) * 4
			copy(out[dstOff:dstOff+4], src[srcOff:srcOff+4])
		}
	}
	return out
}

func rotate270CW(src []byte, w, h int) []byte {
	out := make([]byte, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcOff := (y*w + x) * 4
			dstX := y
			dstY := w - 1 - x
			dstOff := (dstY*h + dstX) * 4
			copy(out[dstOff:dstOff+4], src[srcOff:srcOff+4])
		}
	}
	return out
}

// rotatedDims returns the frame dimensions after rotating a srcW x srcH
// buffer by deg degrees.
func rotatedDims(srcW, srcH, deg int) (int, int) {
	if deg == 90 || deg == 270 {
		return srcH, srcW
	}
	return srcW, srcH
}

type errInvalidRotation int

func (e errInvalidRotation) Error() string {
	return "invalid rotation degrees (must be 0, 90, 180, or 270)"
}
