package apps

import (
	"sync"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

// Notepad is a plain text buffer
type Notepad struct {
	windowID int

	mu   sync.RWMutex
	text string
}

func newNotepad(windowID int) *Notepad {
	return &Notepad{windowID: windowID}
}

// SetText replaces the buffer
func (n *Notepad) SetText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
}

// Text returns the buffer
func (n *Notepad) Text() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.text
}

// Snapshot returns the read-only view
func (n *Notepad) Snapshot() types.NotepadSnapshot {
	return types.NotepadSnapshot{WindowID: n.windowID, Text: n.Text()}
}

func (n *Notepad) close() {}
