package types

import "time"

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry in a chat conversation
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSnapshot is the read-only view of a chat window
type ChatSnapshot struct {
	WindowID int           `json:"window_id"`
	Messages []ChatMessage `json:"messages"`
	Loading  bool          `json:"loading"`
}

// NotepadSnapshot is the read-only view of a notepad window
type NotepadSnapshot struct {
	WindowID int    `json:"window_id"`
	Text     string `json:"text"`
}

// Wallpaper is a selectable desktop background
type Wallpaper struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	Selected bool   `json:"selected"`
}

// HardwareLine is one labelled line of the About panel
type HardwareLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SystemInfo is the About panel content
type SystemInfo struct {
	Product    string         `json:"product"`
	Edition    string         `json:"edition"`
	Copyright  string         `json:"copyright"`
	Hardware   []HardwareLine `json:"hardware"`
	Activation string         `json:"activation"`
	Disclaimer string         `json:"disclaimer"`

	// Live values from the serving process
	Uptime     string `json:"uptime"`
	BootedAt   string `json:"booted_at"`
	Memory     string `json:"memory"`
	Goroutines int    `json:"goroutines"`
}
