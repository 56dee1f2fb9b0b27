package streamdeck

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/battles-core/core/clock"
	"github.com/battles-core/core/corelog"
)

// ButtonEvent reports one press (the play state toggles on the press
// edge per §5.5; releases are never reported).
type ButtonEvent struct {
	Index     int
	ButtonID  string
	IsPlaying bool
}

// Controller owns a connected Session, its current layout, and the
// blocking key-read loop that turns hardware presses into ButtonEvents.
type Controller struct {
	session  *Session
	clock    *clock.Clock
	onButton func(ButtonEvent)
	cacheDir string

	mu      sync.Mutex
	slots   []*FxButton
	states  map[int]ButtonState
	lastKey []bool

	animation *LoadingAnimation
	cancelAnim context.CancelFunc
}

// NewController wraps session with layout/state tracking and press
// dispatch to onButton. The image cache directory defaults to
// DefaultCacheDir; override it with SetCacheDir.
func NewController(session *Session, clk *clock.Clock, onButton func(ButtonEvent)) *Controller {
	return &Controller{
		session:  session,
		clock:    clk,
		onButton: onButton,
		cacheDir: DefaultCacheDir(),
		states:   make(map[int]ButtonState),
	}
}

// SetCacheDir overrides the directory the image cache lookup (§6) reads
// from.
func (c *Controller) SetCacheDir(dir string) {
	c.mu.Lock()
	c.cacheDir = dir
	c.mu.Unlock()
}

// thumbnailFor resolves btn's cached art, falling back to a media-type
// classification of its source URL when no decodable thumbnail exists.
// A cache hit on an extension we recognize but can't decode (avif)
// still counts as "has art": it suppresses the media glyph even though
// it can't be drawn (§4.I).
func (c *Controller) thumbnailFor(btn *FxButton) (image.Image, mediaKind) {
	if btn == nil || btn.Control {
		return nil, mediaNone
	}

	c.mu.Lock()
	dir := c.cacheDir
	c.mu.Unlock()

	if img := lookupThumbnail(dir, btn.Name); img != nil {
		return img, mediaNone
	}
	if hasCachedAsset(dir, btn.Name) {
		return nil, mediaNone
	}
	return nil, detectMediaType(btn.ImageURL)
}

// StartLoadingAnimation begins the startup reveal/idle loop in the
// background, stopping any animation already running.
func (c *Controller) StartLoadingAnimation(ctx context.Context) {
	c.StopLoadingAnimation()
	animCtx, cancel := context.WithCancel(ctx)
	c.animation = NewLoadingAnimation(c.session, c.clock)
	c.cancelAnim = cancel
	go c.animation.Run(animCtx)
}

// StopLoadingAnimation halts the currently running animation, if any.
func (c *Controller) StopLoadingAnimation() {
	if c.animation != nil {
		c.animation.Stop()
	}
	if c.cancelAnim != nil {
		c.cancelAnim()
	}
	c.animation = nil
	c.cancelAnim = nil
}

// UpdateLayout stops the loading animation (once FX are loaded there
// is nothing left to animate toward, per the original manager's
// update_layout), assigns battleBoard/userFX to the grid, and renders
// every button.
func (c *Controller) UpdateLayout(battleBoard, userFX []FxButton) error {
	c.StopLoadingAnimation()

	kind := c.session.Kind()
	c.mu.Lock()
	c.slots = Layout(kind, battleBoard, userFX)
	c.mu.Unlock()

	return c.renderAll()
}

func (c *Controller) renderAll() error {
	c.mu.Lock()
	slots := c.slots
	kind := c.session.Kind()
	c.mu.Unlock()

	for idx, btn := range slots {
		state := c.states[idx]
		state.Button = btn
		thumb, media := c.thumbnailFor(btn)
		img := RenderButton(kind, btn, state, thumb, media)
		if err := c.session.SetImage(idx, img); err != nil {
			return err
		}
	}
	return nil
}

// SetButtonState updates the play state for buttonID, re-rendering
// its tile if it is currently assigned to a key.
func (c *Controller) SetButtonState(buttonID string, isPlaying bool) error {
	c.mu.Lock()
	idx := -1
	for i, b := range c.slots {
		if b != nil && b.ID == buttonID {
			idx = i
			break
		}
	}
	kind := c.session.Kind()
	c.mu.Unlock()
	if idx < 0 {
		return nil
	}

	c.states[idx] = ButtonState{Button: c.slots[idx], IsPlaying: isPlaying}
	thumb, media := c.thumbnailFor(c.slots[idx])
	img := RenderButton(kind, c.slots[idx], c.states[idx], thumb, media)
	return c.session.SetImage(idx, img)
}

// Watch blocks, reading key state reports until ctx is cancelled,
// dispatching one ButtonEvent per newly-pressed key (press edge only,
// §8 Scenario F: toggling the same key twice yields playing then
// stopped).
func (c *Controller) Watch(ctx context.Context) {
	errs := corelog.NewThrottled(100)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		states, err := c.session.KeyStates()
		if err != nil {
			errs.Log(ctx, slog.LevelWarn, "streamdeck.Controller.Watch: read failed", "err", err)
			continue
		}
		c.dispatchEdges(states)
	}
}

func (c *Controller) dispatchEdges(states []bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastKey == nil || len(c.lastKey) != len(states) {
		c.lastKey = make([]bool, len(states))
	}

	for i, pressed := range states {
		if pressed && !c.lastKey[i] {
			c.handlePressLocked(i)
		}
		c.lastKey[i] = pressed
	}
}

func (c *Controller) handlePressLocked(idx int) {
	if idx >= len(c.slots) || c.slots[idx] == nil {
		return
	}
	btn := c.slots[idx]
	state := c.states[idx]
	state.IsPlaying = !state.IsPlaying
	state.Button = btn
	c.states[idx] = state

	// c.mu is already held here, so the cache lookup reads c.cacheDir
	// directly instead of going through thumbnailFor, which locks c.mu.
	var thumb image.Image
	media := mediaNone
	if !btn.Control {
		if thumb = lookupThumbnail(c.cacheDir, btn.Name); thumb == nil && !hasCachedAsset(c.cacheDir, btn.Name) {
			media = detectMediaType(btn.ImageURL)
		}
	}
	img := RenderButton(c.session.Kind(), btn, state, thumb, media)
	_ = c.session.SetImage(idx, img)

	if c.onButton != nil {
		c.onButton(ButtonEvent{Index: idx, ButtonID: btn.ID, IsPlaying: state.IsPlaying})
	}
}
