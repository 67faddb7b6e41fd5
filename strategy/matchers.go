package strategy

import (
	"path/filepath"
	"strings"

	"github.com/dashreel/dashreel/media"
	"github.com/samber/lo"
)

var (
	fragileMimeMarkers  = []string{"hevc", "hev1", "hvc1"}
	fragileCodecMarkers = []string{"hev", "hvc", "h265"}
	fragilePathMarkers  = []string{"hevc", "h265", "265"}
	fragileExtensions   = []string{".hevc", ".h265", ".265"}
	containerExtensions = []string{".mp4", ".mkv", ".avi", ".mov", ".flv", ".wmv", ".webm", ".m4v"}
)

// FragileCodec accepts items that are, or may be, encoded with HEVC/H.265,
// the family platform decoders most often fail on.
type FragileCodec struct {
	// ContainerBias also accepts every generic container, whose codec is unknown until probed.
	ContainerBias bool
}

func (f FragileCodec) CanHandle(item *media.Item) bool {
	if item == nil {
		return false
	}

	if mime, ok := item.MIME.Get(); ok && containsAny(mime, fragileMimeMarkers) {
		return true
	}

	if codec, ok := item.Codec.Get(); ok && containsAny(codec, fragileCodecMarkers) {
		return true
	}

	ext := strings.ToLower(filepath.Ext(item.Name))
	if ext != "" && lo.Contains(fragileExtensions, ext) {
		return true
	}

	if item.Path != "" && containsAny(item.Path, fragilePathMarkers) {
		return true
	}

	return f.ContainerBias && ext != "" && lo.Contains(containerExtensions, ext)
}

// AcceptAll accepts every item.
type AcceptAll struct{}

func (AcceptAll) CanHandle(*media.Item) bool {
	return true
}

func containsAny(s string, markers []string) bool {
	s = strings.ToLower(s)
	return lo.SomeBy(markers, func(m string) bool {
		return strings.Contains(s, m)
	})
}
