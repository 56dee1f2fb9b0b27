package streamdeck

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/webp"
)

// thumbnailExtensions are the decodable cache extensions, checked in
// this order (§6 image cache contract); webp first since it is the
// host's preferred format.
var thumbnailExtensions = []string{"webp", "jpg", "jpeg", "png", "gif"}

// cacheExtensions additionally includes avif: recognized for cache-hit
// classification but never decoded, since no mature pure-Go decoder
// exists in the pack or ecosystem.
var cacheExtensions = append(append([]string{}, thumbnailExtensions...), "avif")

// DefaultCacheDir is the directory a Controller looks in when no
// explicit cache directory has been configured, matching where the
// host-side cache populator is expected to write (§6 image cache
// contract leaves the exact path to the host; this is just a sane
// default).
func DefaultCacheDir() string {
	return filepath.Join(os.TempDir(), "battles_fx_cache")
}

// lookupThumbnail resolves dir/<name>.<ext> across thumbnailExtensions
// and decodes the first file that exists, in preference order.
func lookupThumbnail(dir, name string) image.Image {
	if dir == "" {
		return nil
	}
	for _, ext := range thumbnailExtensions {
		f, err := os.Open(filepath.Join(dir, name+"."+ext))
		if err != nil {
			continue
		}
		img, decErr := decodeThumbnail(f, ext)
		f.Close()
		if decErr == nil {
			return img
		}
	}
	return nil
}

func decodeThumbnail(f *os.File, ext string) (image.Image, error) {
	if ext == "webp" {
		return webp.Decode(f)
	}
	img, _, err := image.Decode(f)
	return img, err
}

// hasCachedAsset reports a cache hit for name across every known
// extension, including the undecodable avif one: an avif cache file
// still counts as "has art" for classification purposes even though
// it can't be drawn as a thumbnail.
func hasCachedAsset(dir, name string) bool {
	if dir == "" {
		return false
	}
	for _, ext := range cacheExtensions {
		if _, err := os.Stat(filepath.Join(dir, name+"."+ext)); err == nil {
			return true
		}
	}
	return false
}

type mediaKind int

const (
	mediaNone mediaKind = iota
	mediaVideo
	mediaAudio
)

var videoExtensions = []string{".mp4", ".webm", ".mov", ".avi"}
var audioExtensions = []string{".mp3", ".wav", ".ogg", ".m4a"}

// detectMediaType classifies an FX source URL for the play/note-glyph
// fallback drawn when there is no cached thumbnail (§4.I).
func detectMediaType(url string) mediaKind {
	lower := strings.ToLower(url)
	for _, ext := range videoExtensions {
		if strings.Contains(lower, ext) {
			return mediaVideo
		}
	}
	for _, ext := range audioExtensions {
		if strings.Contains(lower, ext) {
			return mediaAudio
		}
	}
	return mediaNone
}
