package streamdeck

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

const maxNameRunes = 10

// nameFontScale and controlFontScale express glyph size as a fraction
// of tile height (§4.I: "~13%" for the name bar, "~18%" for control
// button labels).
const nameFontScale = 1.0 / 7.7
const controlFontScale = 0.18

var (
	colorPlaying    = color.RGBA{0x32, 0xCD, 0x32, 0xFF}
	colorIdle       = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	colorTextBarBg  = color.RGBA{0x00, 0x00, 0x00, 0xB4}
	colorTextFg     = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	colorPlayBorder = color.RGBA{0x32, 0xFF, 0x32, 0xFF}
	colorGlyph      = color.RGBA{0xFF, 0xFF, 0xFF, 0xC8}
)

var nameFont *opentype.Font

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	nameFont = f
}

func faceAtSize(px float64) font.Face {
	face, err := opentype.NewFace(nameFont, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(err)
	}
	return face
}

// RenderButton draws one key's tile: a cached thumbnail (or a media
// glyph, or a solid idle/playing background), a translucent name bar
// along the bottom, and a playing-state border, matching the layered
// look of the original loading/button art (§5.3). thumbnail and media
// are resolved by the caller (Controller), which is the only piece
// that knows the configured image cache directory.
func RenderButton(kind Kind, btn *FxButton, state ButtonState, thumbnail image.Image, media mediaKind) image.Image {
	size := kind.KeySize
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	if btn != nil && btn.Control {
		r, g, b := ControlColor(btn.Name)
		fillRect(img, image.Rect(0, 0, size, size), color.RGBA{r, g, b, 0xFF})
		drawCenteredLabel(img, btn.Name, colorTextFg, size)
		return img
	}

	bg := colorIdle
	if state.IsPlaying {
		bg = colorPlaying
	}
	fillRect(img, image.Rect(0, 0, size, size), bg)

	if thumbnail != nil {
		drawThumbnail(img, thumbnail, size)
	} else {
		drawMediaGlyph(img, media, size)
	}

	if state.IsPlaying {
		drawBorder(img, colorPlayBorder, 6)
	}

	if btn != nil {
		barHeight := size / 4
		barY := size - barHeight
		fillRect(img, image.Rect(0, barY, size, size), colorTextBarBg)
		drawNameLabel(img, truncateName(btn.Name), barY, barHeight, size)
	}

	return img
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= maxNameRunes {
		return name
	}
	return string(r[:maxNameRunes-3]) + "..."
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func drawBorder(img *image.RGBA, c color.Color, width int) {
	b := img.Bounds()
	for i := 0; i < width; i++ {
		r := image.Rect(b.Min.X+i, b.Min.Y+i, b.Max.X-i, b.Max.Y-i)
		drawHollowRect(img, r, c)
	}
}

func drawHollowRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawThumbnail resizes src onto dst with x/image/draw's triangle
// (bilinear) filter, the Go equivalent of the original's
// `FilterType::Triangle` resize (§4.I).
func drawThumbnail(dst *image.RGBA, src image.Image, size int) {
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
}

func drawNameLabel(img *image.RGBA, text string, barY, barHeight, size int) {
	face := faceAtSize(float64(size) * nameFontScale)
	drawLabel(img, face, text, colorTextFg, barY+barHeight/2+int(float64(size)*nameFontScale/3))
}

func drawCenteredLabel(img *image.RGBA, text string, c color.Color, size int) {
	face := faceAtSize(float64(size) * controlFontScale)
	drawLabel(img, face, text, c, size/2+int(float64(size)*controlFontScale/3))
}

func drawLabel(img *image.RGBA, face font.Face, text string, c color.Color, baselineY int) {
	width := font.MeasureString(face, text).Ceil()
	x := (img.Bounds().Dx() - width) / 2

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: c},
		Face: face,
		Dot:  fixed.P(x, baselineY),
	}
	d.DrawString(text)
}

// drawMediaGlyph draws a play-triangle for video sources or a music
// note for audio sources when no cached thumbnail resolved (§4.I,
// ported from `streamdeck_manager.rs`'s draw_video_icon/draw_audio_icon).
func drawMediaGlyph(img *image.RGBA, media mediaKind, size int) {
	if media == mediaNone {
		return
	}
	cx, cy := size/2, int(float64(size)*0.4)
	iconSize := int(float64(size) * 0.4)

	switch media {
	case mediaVideo:
		drawVideoGlyph(img, cx, cy, iconSize)
	case mediaAudio:
		drawAudioGlyph(img, cx, cy, iconSize)
	}
}

func drawVideoGlyph(img *image.RGBA, cx, cy, iconSize int) {
	w, h := iconSize, int(float64(iconSize)*0.7)
	drawHollowRect(img, image.Rect(cx-w/2, cy-h/2, cx+w/2, cy+h/2), colorGlyph)

	triSize := iconSize / 3
	for dy := -triSize; dy < triSize; dy++ {
		width := int(float64(triSize) * (1 - math.Abs(float64(dy))/float64(triSize)))
		for dx := 0; dx < width; dx++ {
			img.Set(cx+dx, cy+dy, colorGlyph)
		}
	}
}

func drawAudioGlyph(img *image.RGBA, cx, cy, iconSize int) {
	stemX := cx + iconSize/4
	stemTop := cy - iconSize/2
	stemBottom := cy + iconSize/4
	for y := stemTop; y < stemBottom; y++ {
		for dx := -1; dx <= 1; dx++ {
			img.Set(stemX+dx, y, colorGlyph)
		}
	}

	noteRadius := iconSize / 4
	drawFilledCircle(img, stemX, stemBottom, noteRadius, colorGlyph)
}

func drawFilledCircle(img *image.RGBA, cx, cy, radius int, c color.Color) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}
