// Package shell holds the desktop chrome state outside the window manager:
// the wallpaper and the start menu.
package shell

import (
	"errors"
	"net/url"
	"sync"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

// DefaultWallpaper is shown until the user picks another one
const DefaultWallpaper = "https://picsum.photos/1920/1080"

var ErrInvalidWallpaper = errors.New("wallpaper must be an absolute http or https URL")

// Listener observes shell changes
type Listener func(snapshot types.ShellSnapshot)

// Desktop is the shell state
type Desktop struct {
	mu            sync.Mutex
	wallpaper     string
	startMenuOpen bool

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewDesktop returns a desktop with the default wallpaper and the start menu closed
func NewDesktop() *Desktop {
	return &Desktop{wallpaper: DefaultWallpaper}
}

// Subscribe registers a change listener
func (d *Desktop) Subscribe(l Listener) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	d.listeners = append(d.listeners, l)
}

// ToggleStartMenu flips the start menu and returns whether it is now open
func (d *Desktop) ToggleStartMenu() bool {
	d.mu.Lock()
	d.startMenuOpen = !d.startMenuOpen
	open := d.startMenuOpen
	snap := d.snapshotLocked()
	d.mu.Unlock()

	d.publish(snap)
	return open
}

// CloseStartMenu closes the start menu, reporting whether it was open
func (d *Desktop) CloseStartMenu() bool {
	d.mu.Lock()
	if !d.startMenuOpen {
		d.mu.Unlock()
		return false
	}
	d.startMenuOpen = false
	snap := d.snapshotLocked()
	d.mu.Unlock()

	d.publish(snap)
	return true
}

// SetWallpaper replaces the wallpaper image
func (d *Desktop) SetWallpaper(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidWallpaper
	}

	d.mu.Lock()
	d.wallpaper = u.String()
	snap := d.snapshotLocked()
	d.mu.Unlock()

	d.publish(snap)
	return nil
}

// Snapshot returns the current shell state
func (d *Desktop) Snapshot() types.ShellSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Desktop) snapshotLocked() types.ShellSnapshot {
	return types.ShellSnapshot{
		Wallpaper:     d.wallpaper,
		StartMenuOpen: d.startMenuOpen,
	}
}

func (d *Desktop) publish(snap types.ShellSnapshot) {
	d.listenersMu.RLock()
	listeners := make([]Listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.listenersMu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Wallpaper returns the current wallpaper URL
func (d *Desktop) Wallpaper() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wallpaper
}
