package render

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/battles-core/core/corelog"
	"github.com/battles-core/core/corerr"
)

// chromaKeyShaderSrc is the Kage port of the RGB-then-YUV distance test
// from §4.C: an RGB-space Euclidean distance from the key color gates a
// costlier BT.601 YUV distance, which in turn gates whether the pixel's
// alpha collapses to zero.
const chromaKeyShaderSrc = `
package main

var KeyColor vec3
var Tolerance float
var Similarity float
var Enabled float

func rgbToYUV(c vec3) vec3 {
	y := 0.299*c.r + 0.587*c.g + 0.114*c.b
	u := -0.168736*c.r - 0.331264*c.g + 0.5*c.b + 0.5
	v := 0.5*c.r - 0.418688*c.g - 0.081312*c.b + 0.5
	return vec3(y, u, v)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0UnsafeAt(srcPos)
	if Enabled == 0 {
		return c
	}
	d := c.rgb - KeyColor
	rgbDist := sqrt(dot(d, d))
	if rgbDist >= Tolerance {
		return c
	}
	yuv1 := rgbToYUV(c.rgb)
	yuv2 := rgbToYUV(KeyColor)
	dd := yuv1 - yuv2
	yuvDist := sqrt(dot(dd, dd))
	if yuvDist < Similarity {
		return vec4(c.rgb, 0)
	}
	return c
}
`

// EbitenSurface is the default present path (§4.C): a windowed
// swap-chain-equivalent target with VSync enabled (PresentMode =
// Fifo), rendering the chroma-key shader onto the window image every
// frame. It never performs GPU readback; PollReadback always returns
// false — the readback-capable backend is VulkanSurface.
type EbitenSurface struct {
	mu      sync.RWMutex
	width   int
	height  int
	window  *ebiten.Image
	shader  *ebiten.Shader
	frame   Frame
	params  ChromaKeyParams
	started bool
	readyCh chan struct{}
}

// NewEbitenSurface compiles the chroma-key Kage shader and returns a
// surface sized width x height.
func NewEbitenSurface(width, height int) (*EbitenSurface, error) {
	shader, err := ebiten.NewShader([]byte(chromaKeyShaderSrc))
	if err != nil {
		return nil, corerr.New("render.NewEbitenSurface", corerr.GpuFatal, err)
	}
	return &EbitenSurface{
		width:   width,
		height:  height,
		shader:  shader,
		readyCh: make(chan struct{}, 1),
	}, nil
}

// Start opens the window and begins the present loop. It blocks until
// the first Draw call lands, mirroring the teacher's startup handshake.
func (s *EbitenSurface) Start(title string) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	ebiten.SetWindowSize(s.width, s.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		if err := ebiten.RunGame(s); err != nil {
			corelog.Default().Error("render: ebiten surface terminated", "err", err)
		}
	}()
	<-s.readyCh
	return nil
}

// Render stages the next frame and chroma-key parameters; the actual
// draw happens on Ebiten's own goroutine via Draw.
func (s *EbitenSurface) Render(frame Frame, params ChromaKeyParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
	s.params = params
	return nil
}

// PollReadback is always empty on this backend (§4.C: no readback in
// the present path).
func (s *EbitenSurface) PollReadback() ([]byte, bool) {
	return nil, false
}

func (s *EbitenSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	ebiten.SetWindowSize(width, height)
	return nil
}

func (s *EbitenSurface) Close() error {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return nil
}

// Update implements ebiten.Game.
func (s *EbitenSurface) Update() error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game: it uploads the staged frame as a texture
// and runs the chroma-key shader directly onto the swap-chain image —
// render pass, submit, present in one call, with no intermediate CPU
// copy (§4.C present path).
func (s *EbitenSurface) Draw(screen *ebiten.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame.RGBA == nil {
		s.signalReady()
		return
	}
	if s.window == nil || s.window.Bounds().Dx() != s.frame.Width || s.window.Bounds().Dy() != s.frame.Height {
		s.window = ebiten.NewImage(s.frame.Width, s.frame.Height)
	}
	s.window.WritePixels(s.frame.RGBA)

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = s.window
	op.Uniforms = map[string]interface{}{
		"KeyColor":   []float32{float32(s.params.KeyR) / 255, float32(s.params.KeyG) / 255, float32(s.params.KeyB) / 255},
		"Tolerance":  float32(s.params.Tolerance / 255),
		"Similarity": float32(s.params.Similarity / 255),
		"Enabled":    enabledUniform(s.params.Enabled),
	}
	screen.DrawRectShader(s.frame.Width, s.frame.Height, s.shader, op)
	s.signalReady()
}

func (s *EbitenSurface) signalReady() {
	select {
	case s.readyCh <- struct{}{}:
	default:
	}
}

// Layout implements ebiten.Game.
func (s *EbitenSurface) Layout(_, _ int) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

func enabledUniform(enabled bool) float32 {
	if enabled {
		return 1
	}
	return 0
}
