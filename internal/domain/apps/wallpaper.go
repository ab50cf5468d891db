package apps

import (
	"fmt"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

// WallpaperChoices are the backgrounds offered by the picker
var WallpaperChoices = []string{
	"https://picsum.photos/seed/wall1/1920/1080",
	"https://picsum.photos/seed/wall2/1920/1080",
	"https://picsum.photos/seed/wall3/1920/1080",
	"https://picsum.photos/seed/wall4/1920/1080",
	"https://picsum.photos/seed/wall5/1920/1080",
	"https://picsum.photos/seed/wall6/1920/1080",
}

// WallpaperPicker applies one of the fixed backgrounds to the desktop
type WallpaperPicker struct {
	desktop Desktop
	cues    CueNotifier
}

func newWallpaperPicker(desktop Desktop, cues CueNotifier) *WallpaperPicker {
	return &WallpaperPicker{desktop: desktop, cues: cues}
}

// List returns the choices, marking the one currently on the desktop
func (w *WallpaperPicker) List() []types.Wallpaper {
	current := ""
	if w.desktop != nil {
		current = w.desktop.Wallpaper()
	}

	out := make([]types.Wallpaper, len(WallpaperChoices))
	for i, url := range WallpaperChoices {
		out[i] = types.Wallpaper{Index: i, URL: url, Selected: url == current}
	}
	return out
}

// Choose sets the desktop wallpaper to choice index
func (w *WallpaperPicker) Choose(index int) error {
	if index < 0 || index >= len(WallpaperChoices) {
		return fmt.Errorf("%w: %d", ErrNoSuchChoice, index)
	}
	if w.cues != nil {
		w.cues.Notify(types.CueClick)
	}
	if w.desktop == nil {
		return nil
	}
	return w.desktop.SetWallpaper(WallpaperChoices[index])
}

func (w *WallpaperPicker) close() {}
