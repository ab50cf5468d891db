package types

// AppKind selects the behavior instantiated for a registry entry
type AppKind string

const (
	KindNotepad   AppKind = "notepad"
	KindAbout     AppKind = "about"
	KindWallpaper AppKind = "wallpaper"
	KindChat      AppKind = "chat"
)

// Valid reports whether k names a known application behavior
func (k AppKind) Valid() bool {
	switch k {
	case KindNotepad, KindAbout, KindWallpaper, KindChat:
		return true
	}
	return false
}

// Size represents window dimensions in layout units
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultWindowSize is used when a descriptor has no default size
var DefaultWindowSize = Size{Width: 600, Height: 400}

// Descriptor is an immutable application registry entry
type Descriptor struct {
	ID            string  `json:"id" yaml:"id"`
	Title         string  `json:"title" yaml:"title"`
	Icon          string  `json:"icon" yaml:"icon"`
	Kind          AppKind `json:"kind" yaml:"kind"`
	AllowMultiple bool    `json:"allow_multiple" yaml:"allow_multiple"`
	DefaultSize   *Size   `json:"default_size,omitempty" yaml:"default_size"`
}

// WindowSize returns the descriptor's default size or the system default
func (d Descriptor) WindowSize() Size {
	if d.DefaultSize == nil || d.DefaultSize.Width <= 0 || d.DefaultSize.Height <= 0 {
		return DefaultWindowSize
	}
	return *d.DefaultSize
}
