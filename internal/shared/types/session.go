package types

import "time"

// Phase is the coarse lifecycle stage of the desktop session
type Phase string

const (
	PhaseBooting         Phase = "booting"
	PhaseRunning         Phase = "running"
	PhaseShutdownPending Phase = "shutdown_pending"
	PhaseShutdownFinal   Phase = "shutdown_final"
)

// Ordinal returns the phase's position in the session lifecycle
func (p Phase) Ordinal() int {
	switch p {
	case PhaseBooting:
		return 0
	case PhaseRunning:
		return 1
	case PhaseShutdownPending:
		return 2
	case PhaseShutdownFinal:
		return 3
	}
	return -1
}

// PhaseSnapshot is the read-only view of the session controller
type PhaseSnapshot struct {
	SessionID string     `json:"session_id"`
	Phase     Phase      `json:"phase"`
	FadingOut bool       `json:"fading_out"` // Boot screen fade in progress
	StartedAt time.Time  `json:"started_at"`
	RunningAt *time.Time `json:"running_at,omitempty"`
}

// Cue is a sound cue emitted on lifecycle events
type Cue string

const (
	CueStartup  Cue = "startup"
	CueOpen     Cue = "open"
	CueClose    Cue = "close"
	CueMinimize Cue = "minimize"
	CueClick    Cue = "click"
	CueShutdown Cue = "shutdown"
)

// AllCues lists every cue in declaration order
var AllCues = []Cue{CueStartup, CueOpen, CueClose, CueMinimize, CueClick, CueShutdown}

// Valid reports whether c is a known cue
func (c Cue) Valid() bool {
	for _, known := range AllCues {
		if c == known {
			return true
		}
	}
	return false
}

// ShellSnapshot is the desktop chrome state outside the window manager
type ShellSnapshot struct {
	Wallpaper     string `json:"wallpaper"`
	StartMenuOpen bool   `json:"start_menu_open"`
}

// DesktopSnapshot is everything the browser needs to render the desktop
type DesktopSnapshot struct {
	Session PhaseSnapshot `json:"session"`
	Shell   ShellSnapshot `json:"shell"`
	Windows []Window      `json:"windows"` // Ordered by z-index ascending
	Taskbar []Window      `json:"taskbar"` // Ordered by creation
}
