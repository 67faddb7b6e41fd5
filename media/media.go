// Package media describes the items a playback queue is made of.
package media

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Kind separates items that are decoded from items that are only displayed.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".heic"}

// Item is the metadata of one queue entry. It is immutable once resolved.
type Item struct {
	// Path is the location of the item: a local path or a remote link.
	Path string
	// Name is the display name, usually the file name.
	Name string
	// FileID is the remote file id, zero for local items.
	FileID int64
	Size   int64
	Kind   Kind
	// MIME is the declared MIME type, if the remote listing carried one.
	MIME mo.Option[string]
	// Codec is the declared codec tag (e.g. "hvc1.1.6.L93"), if known.
	Codec mo.Option[string]
}

// New builds an item from a path, deriving its name and kind from the extension.
func New(path string) *Item {
	name := filepath.Base(path)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	return &Item{
		Path:  path,
		Name:  name,
		Kind:  KindOf(name),
		MIME:  mo.None[string](),
		Codec: mo.None[string](),
	}
}

// KindOf guesses the kind of a file from its name. Anything that is not a known image is a video.
func KindOf(name string) Kind {
	if lo.Contains(imageExtensions, strings.ToLower(filepath.Ext(name))) {
		return KindImage
	}
	return KindVideo
}

// WithMIME returns a copy of the item with a declared MIME type.
// Declaring an image MIME also makes the item an image.
func (i Item) WithMIME(mime string) *Item {
	if mime == "" {
		i.MIME = mo.None[string]()
		return &i
	}

	i.MIME = mo.Some(mime)
	if strings.HasPrefix(strings.ToLower(mime), "image/") {
		i.Kind = KindImage
	}
	return &i
}

// WithCodec returns a copy of the item with a declared codec tag.
func (i Item) WithCodec(codec string) *Item {
	if codec == "" {
		i.Codec = mo.None[string]()
	} else {
		i.Codec = mo.Some(codec)
	}
	return &i
}

// IsVideo reports whether the item goes through backend selection.
func (i *Item) IsVideo() bool {
	return i.Kind == KindVideo
}

// IsRemote reports whether the item path is a URL.
func (i *Item) IsRemote() bool {
	return strings.Contains(i.Path, "://")
}

// Ext returns the lowercased file extension of the item name.
func (i *Item) Ext() string {
	return strings.ToLower(filepath.Ext(i.Name))
}

func (i *Item) String() string {
	return i.Name
}
