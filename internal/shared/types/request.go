package types

// OpenRequest opens an application window
type OpenRequest struct {
	AppID string `json:"app_id" binding:"required"`
}

// MoveRequest moves a window during a drag
type MoveRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// WallpaperRequest changes the desktop wallpaper
type WallpaperRequest struct {
	URL string `json:"url" binding:"required"`
}

// NotepadRequest replaces a notepad's text
type NotepadRequest struct {
	Text string `json:"text"`
}

// ChatRequest sends a chat message from a chat window
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// WSMessage represents a WebSocket message sent by the browser
type WSMessage struct {
	Type     string  `json:"type"`
	AppID    string  `json:"app_id,omitempty"`
	WindowID *int    `json:"window_id,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// WSEvent represents a WebSocket message pushed to the browser
type WSEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}
