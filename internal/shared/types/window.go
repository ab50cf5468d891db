package types

// Position represents the top-left corner of a window
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Window represents one open application window
type Window struct {
	ID       int      `json:"id"`
	AppID    string   `json:"app_id"`
	Title    string   `json:"title"`
	Icon     string   `json:"icon"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
	ZIndex   int      `json:"z_index"`

	// Lifecycle flags. Minimizing and Closing mark an animation in flight and
	// are cleared only by the presentation layer's completion signal.
	IsMinimized  bool `json:"is_minimized"`
	IsMinimizing bool `json:"is_minimizing"`
	IsClosing    bool `json:"is_closing"`
}

// ChangeKind names a window manager mutation
type ChangeKind string

const (
	ChangeOpened     ChangeKind = "opened"
	ChangeFocused    ChangeKind = "focused"
	ChangeMoved      ChangeKind = "moved"
	ChangeClosing    ChangeKind = "closing"
	ChangeRemoved    ChangeKind = "removed"
	ChangeMinimizing ChangeKind = "minimizing"
	ChangeMinimized  ChangeKind = "minimized"
	ChangeRestored   ChangeKind = "restored"
)

// WindowChange describes one applied window manager mutation
type WindowChange struct {
	Kind      ChangeKind `json:"kind"`
	WindowID  int        `json:"window_id"`
	AppID     string     `json:"app_id"`
	Remaining int        `json:"remaining"` // Tracked windows after the change
}

// WindowStats contains window manager statistics
type WindowStats struct {
	Tracked   int  `json:"tracked"`
	Visible   int  `json:"visible"`
	Minimized int  `json:"minimized"`
	Closing   int  `json:"closing"`
	FocusedID *int `json:"focused_id,omitempty"`
}
