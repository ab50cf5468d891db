package app

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

var (
	ErrNotAccepting  = errors.New("desktop is not accepting input")
	ErrUnknownIntent = errors.New("unknown intent")
)

// IntentKind names a user or presentation-layer request
type IntentKind string

const (
	IntentOpen            IntentKind = "open"
	IntentFocus           IntentKind = "focus"
	IntentMove            IntentKind = "move"
	IntentMinimize        IntentKind = "minimize"
	IntentMinimized       IntentKind = "minimized"
	IntentRestore         IntentKind = "restore"
	IntentClose           IntentKind = "close"
	IntentClosed          IntentKind = "closed"
	IntentToggleStartMenu IntentKind = "toggle_start_menu"
	IntentShutdown        IntentKind = "shutdown"
)

// Intent is one request against the desktop
type Intent struct {
	Kind     IntentKind
	AppID    string
	WindowID int
	X, Y     float64
}

// Confirmation reports whether the intent completes an animation. These are
// accepted in every phase.
func (k IntentKind) Confirmation() bool {
	return k == IntentMinimized || k == IntentClosed
}

// Valid reports whether k is a known intent
func (k IntentKind) Valid() bool {
	switch k {
	case IntentOpen, IntentFocus, IntentMove, IntentMinimize, IntentMinimized,
		IntentRestore, IntentClose, IntentClosed, IntentToggleStartMenu, IntentShutdown:
		return true
	}
	return false
}

// Result is the outcome of an applied intent. Success is false for
// well-formed intents that changed nothing, such as an unknown window id.
type Result struct {
	Success  bool          `json:"success"`
	Window   *types.Window `json:"window,omitempty"`
	Affected int           `json:"affected,omitempty"`
}

// ParseIntentKind validates a wire name
func ParseIntentKind(name string) (IntentKind, error) {
	kind := IntentKind(name)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, name)
	}
	return kind, nil
}
