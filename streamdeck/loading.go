package streamdeck

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync/atomic"

	"github.com/battles-core/core/clock"
)

// loadingFPS matches the ~30ms-per-frame cadence of the startup reveal.
const loadingFPS = 33

var revealColors = []color.RGBA{
	{0xEE, 0x2B, 0x63, 0xFF}, // pink
	{0xFF, 0xFF, 0xFF, 0xFF}, // white
	{0xE9, 0xB3, 0x20, 0xFF}, // yellow
}

// logoButtonIndex is the first key of the second row — where the
// animated gradient logo tile sits while "BATTLES" reveals letter by
// letter across the rest of that row and "LOADING" across the row
// below it.
func logoButtonIndex(kind Kind) int { return kind.Cols }

// LoadingAnimation drives the startup reveal ("BATTLES" then
// "LOADING", each letter appearing every 3 frames, then a short hold)
// on every button, looping until Stop is called (§5.4).
type LoadingAnimation struct {
	session *Session
	clock   *clock.Clock
	stopped atomic.Bool
}

// NewLoadingAnimation returns an animation driver bound to session.
func NewLoadingAnimation(session *Session, clk *clock.Clock) *LoadingAnimation {
	return &LoadingAnimation{session: session, clock: clk}
}

// Run plays the reveal-and-hold cycle over the moving gradient
// background and repeats it until ctx is cancelled or Stop is called.
func (a *LoadingAnimation) Run(ctx context.Context) {
	ticker := a.clock.NewTicker(loadingFPS)
	kind := a.session.Kind()
	const battlesLen, loadingLen = len("BATTLES"), len("LOADING")
	battlesFrames := battlesLen * 3
	loadingFrames := loadingLen * 3
	holdFrames := 5
	total := battlesFrames + loadingFrames + holdFrames

	frame := 0
	for {
		if a.stopped.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		ticker.WaitNextTick()

		battlesVisible := battlesLen
		loadingVisible := 0
		if phase := frame % total; phase < battlesFrames {
			battlesVisible = min(phase/3, battlesLen)
			loadingVisible = 0
		} else {
			loadingVisible = min((phase-battlesFrames)/3, loadingLen)
		}

		a.renderFrame(kind, frame, battlesVisible, loadingVisible)
		frame++
	}
}

// Stop halts the loop after its current frame.
func (a *LoadingAnimation) Stop() { a.stopped.Store(true) }

func (a *LoadingAnimation) renderFrame(kind Kind, frame, battlesVisible, loadingVisible int) {
	const battles, loading = "BATTLES", "LOADING"
	logoIdx := logoButtonIndex(kind)

	for idx := 0; idx < kind.ButtonCount(); idx++ {
		row := idx / kind.Cols
		col := idx % kind.Cols

		if idx == logoIdx {
			_ = a.session.SetImage(idx, logoTile(kind, frame))
			continue
		}

		img := image.NewRGBA(image.Rect(0, 0, kind.KeySize, kind.KeySize))
		bg := gradientColor(frame, row, col)
		draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

		textCol := col
		if row == 1 && col > 0 {
			textCol = col - 1
		}
		showBattles := row == 1 && col > 0 && textCol < len(battles) && textCol < battlesVisible
		showLoading := row == 2 && col < len(loading) && col < loadingVisible

		switch {
		case showBattles:
			drawRevealLetter(img, battles[textCol], revealColors[textCol%len(revealColors)])
		case showLoading:
			drawRevealLetter(img, loading[col], revealColors[col%len(revealColors)])
		}

		_ = a.session.SetImage(idx, img)
	}
}

func gradientColor(frame, row, col int) color.RGBA {
	wave := float64(frame) * 8.0
	position := float64(col+row) * 25.0
	hue := math.Mod(position+wave, 360.0)
	r, g, b := hsvToRGB(hue, 0.3, 0.2)
	return color.RGBA{r, g, b, 0xFF}
}

func logoTile(kind Kind, frame int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, kind.KeySize, kind.KeySize))
	wave := float64(frame) * 8.0
	r, g, b := hsvToRGB(math.Mod(wave, 360.0), 0.3, 0.2)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{r, g, b, 0xFF}}, image.Point{}, draw.Src)
	return img
}

func drawRevealLetter(img *image.RGBA, letter byte, c color.RGBA) {
	drawCenteredLabel(img, string(letter), c, img.Bounds().Dx())
}

// hsvToRGB converts an HSV triple (h in [0,360), s and v in [0,1]) to
// 8-bit RGB, matching the gradient used by the original reveal.
func hsvToRGB(h, s, v float64) (r, g, b byte) {
	c := v * s
	hPrime := h / 60.0
	x := c * (1 - math.Abs(math.Mod(hPrime, 2)-1))
	m := v - c

	var rf, gf, bf float64
	switch {
	case hPrime < 1:
		rf, gf, bf = c, x, 0
	case hPrime < 2:
		rf, gf, bf = x, c, 0
	case hPrime < 3:
		rf, gf, bf = 0, c, x
	case hPrime < 4:
		rf, gf, bf = 0, x, c
	case hPrime < 5:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	return byte((rf + m) * 255), byte((gf + m) * 255), byte((bf + m) * 255)
}
