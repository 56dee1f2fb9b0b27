package streamdeck

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"time"

	"github.com/sstallion/go-hid"
	"golang.org/x/image/draw"

	"github.com/battles-core/core/corerr"
)

// hidDevice narrows *hid.Device to what a Session needs, so tests can
// substitute an in-memory fake instead of real hardware — the same
// narrowing tactic used for the DMX serial transports.
type hidDevice interface {
	io.Reader
	io.Writer
	io.Closer
	GetFeatureReport([]byte) (int, error)
	SendFeatureReport([]byte) (int, error)
}

// ErrNotConnected indicates the underlying HID handle has disappeared.
var ErrNotConnected = errors.New("streamdeck: device not connected")

const imageReportLen = 1024
const imageHeaderLen = 8
const keyStatesOffset = 4
const brightnessPrefixByte = 0x03

// Session owns one open Stream Deck HID handle.
type Session struct {
	kind   Kind
	serial string
	dev    hidDevice
	buf    []byte
}

// openFunc abstracts hid.Open/hid.OpenFirst so tests can inject a fake
// handle without touching real USB devices.
type openFunc func(vid, pid uint16, serial string) (hidDevice, error)

func defaultOpen(vid, pid uint16, serial string) (hidDevice, error) {
	if serial != "" {
		return hid.Open(vid, pid, serial)
	}
	return hid.OpenFirst(vid, pid)
}

// Connect opens the first Stream Deck matching pid (or the one with
// the given serial, if non-empty) and resets its key image streamer.
func Connect(pid PID, serial string) (*Session, error) {
	return connectWith(pid, serial, defaultOpen)
}

func connectWith(pid PID, serial string, open openFunc) (*Session, error) {
	kind, err := KindFor(pid)
	if err != nil {
		return nil, corerr.New("streamdeck.Connect", corerr.DeviceNotFound, err)
	}
	dev, err := open(vidElgato, uint16(pid), serial)
	if err != nil {
		return nil, corerr.New("streamdeck.Connect", corerr.DeviceBusy, err)
	}
	s := &Session{kind: kind, serial: serial, dev: dev, buf: make([]byte, 32)}
	if err := s.ResetKeyStream(); err != nil {
		s.dev.Close()
		return nil, corerr.New("streamdeck.Connect", corerr.TransportFailure, err)
	}
	return s, nil
}

// Kind returns the device kind this session was opened against.
func (s *Session) Kind() Kind { return s.kind }

// Close releases the underlying HID handle.
func (s *Session) Close() error { return s.dev.Close() }

// ResetKeyStream clears any partially-written image pages on the device.
func (s *Session) ResetKeyStream() error {
	if !s.kind.Visual {
		return nil
	}
	buf := make([]byte, 32)
	buf[0] = 0x02
	_, err := s.dev.SendFeatureReport(buf)
	return err
}

// Reset blanks every button and shows the device's standby image.
func (s *Session) Reset() error {
	if !s.kind.Visual {
		return nil
	}
	buf := make([]byte, 32)
	buf[0] = 0x03
	buf[1] = 0x02
	_, err := s.dev.SendFeatureReport(buf)
	return err
}

// SetBrightness sets the global panel brightness, 0-100.
func (s *Session) SetBrightness(percent int) error {
	if !s.kind.Visual {
		return nil
	}
	if percent < 0 || percent > 100 {
		return corerr.New("streamdeck.Session.SetBrightness", corerr.InvalidInput, errors.New("brightness out of range"))
	}
	buf := make([]byte, 32)
	buf[0] = brightnessPrefixByte
	buf[1] = 0x08
	buf[2] = byte(percent)
	_, err := s.dev.SendFeatureReport(buf)
	return err
}

// KeyStates reads one input report and returns which buttons are
// currently pressed, indexed the same way as SetImage's key index.
func (s *Session) KeyStates() ([]bool, error) {
	n := s.kind.ButtonCount()
	buf := make([]byte, keyStatesOffset+n)
	if _, err := s.dev.Read(buf); err != nil {
		return nil, ErrNotConnected
	}
	states := make([]bool, n)
	for i := 0; i < n; i++ {
		states[i] = buf[keyStatesOffset+i] != 0
	}
	return states, nil
}

// SetImage uploads img (already sized to kind.KeySize x kind.KeySize)
// to the button at the given key index, page-chunked the way the
// device's image streamer requires.
func (s *Session) SetImage(key int, img image.Image) error {
	if !s.kind.Visual {
		return nil
	}
	if key < 0 || key >= s.kind.ButtonCount() {
		return corerr.New("streamdeck.Session.SetImage", corerr.InvalidInput, errors.New("key index out of range"))
	}

	fitted := fitToSquare(img, s.kind.KeySize)
	rotated := rotate180(fitted)

	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, rotated, &jpeg.Options{Quality: 95}); err != nil {
		return corerr.New("streamdeck.Session.SetImage", corerr.InvalidInput, err)
	}

	payload := imageReportLen - imageHeaderLen
	data := encoded.Bytes()
	reader := bytes.NewReader(data)
	pkt := make([]byte, imageReportLen)

	for page := 0; reader.Len() > 0; page++ {
		n, err := reader.Read(pkt[imageHeaderLen:])
		if err != nil && err != io.EOF {
			return corerr.New("streamdeck.Session.SetImage", corerr.TransportFailure, err)
		}
		done := reader.Len() == 0 || n < payload
		writeImageHeader(pkt, key, page, n, done)
		if _, err := s.dev.Write(pkt); err != nil {
			return ErrNotConnected
		}
	}
	return nil
}

func writeImageHeader(dst []byte, key, page, n int, done bool) {
	dst[0], dst[1] = 0x02, 0x07
	dst[2] = byte(key)
	if done {
		dst[3] = 1
	} else {
		dst[3] = 0
	}
	dst[4] = byte(n)
	dst[5] = byte(n >> 8)
	dst[6] = byte(page)
	dst[7] = byte(page >> 8)
}

func fitToSquare(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// rotate180 compensates for most Stream Deck panels mounting their
// LCD rotated 180 degrees relative to the host image orientation.
func rotate180(img image.Image) image.Image { return flip180{img} }

type flip180 struct{ image.Image }

func (f flip180) At(x, y int) color.Color {
	b := f.Bounds()
	return f.Image.At(b.Dx()-1-x+b.Min.X, b.Dy()-1-y+b.Min.Y)
}

// Reconnect retries opening the device every delay until it succeeds
// or ctx is cancelled.
func (s *Session) Reconnect(ctx context.Context, delay time.Duration, open openFunc) error {
	if open == nil {
		open = defaultOpen
	}
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		dev, err := open(vidElgato, uint16(s.kind.PID), s.serial)
		if err != nil {
			continue
		}
		s.dev.Close()
		s.dev = dev
		return s.ResetKeyStream()
	}
}
