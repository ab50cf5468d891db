package apps

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/registry"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/shell"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/window"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cueRecorder struct {
	mu   sync.Mutex
	cues []types.Cue
}

func (r *cueRecorder) Notify(cue types.Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, cue)
}

func (r *cueRecorder) count(cue types.Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cues {
		if c == cue {
			n++
		}
	}
	return n
}

// scriptedStreamer yields chunks, optionally waiting on gate before each
type scriptedStreamer struct {
	chunks []string
	err    error
	gate   chan struct{}

	mu      sync.Mutex
	prompts []string
	history [][]types.ChatMessage
}

func (s *scriptedStreamer) Stream(ctx context.Context, history []types.ChatMessage, prompt string, yield func(string) error) error {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.history = append(s.history, history)
	s.mu.Unlock()

	for _, chunk := range s.chunks {
		if s.gate != nil {
			select {
			case <-s.gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := yield(chunk); err != nil {
			return err
		}
	}
	return s.err
}

type fixture struct {
	windows *window.Manager
	desktop *shell.Desktop
	cues    *cueRecorder
	host    *Host
}

func newFixture(t *testing.T, streamer Streamer) *fixture {
	t.Helper()

	reg := registry.MustDefault()
	f := &fixture{
		desktop: shell.NewDesktop(),
		cues:    &cueRecorder{},
	}
	f.windows = window.NewManager(reg, f.cues, nil)
	f.host = NewHost(reg, Options{
		Desktop:  f.desktop,
		Cues:     f.cues,
		Streamer: streamer,
		Clock:    clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Uptime:   func() time.Duration { return 3 * time.Minute },
	}, nil)
	f.windows.Subscribe(f.host.HandleWindowChange)
	t.Cleanup(f.host.Close)
	return f
}

func (f *fixture) open(t *testing.T, appID string) int {
	t.Helper()
	win, ok := f.windows.Open(appID)
	require.True(t, ok)
	return win.ID
}

func TestHostLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	note := f.open(t, "notepad")
	about := f.open(t, "about_pc")
	assert.Equal(t, 2, f.host.Len())

	_, err := f.host.Notepad(note)
	assert.NoError(t, err)
	_, err = f.host.Notepad(about)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = f.host.Chat(42)
	assert.ErrorIs(t, err, ErrNoSuchWindow)

	f.windows.RequestClose(note)
	_, err = f.host.Notepad(note)
	assert.NoError(t, err, "instance survives until the close is confirmed")

	f.windows.ConfirmClosed(note)
	_, err = f.host.Notepad(note)
	assert.ErrorIs(t, err, ErrNoSuchWindow)
	assert.Equal(t, 1, f.host.Len())
}

func TestNotepadInstancesAreIndependent(t *testing.T) {
	f := newFixture(t, nil)

	a := f.open(t, "notepad")
	b := f.open(t, "notepad")

	pa, _ := f.host.Notepad(a)
	pb, _ := f.host.Notepad(b)
	pa.SetText("groceries")

	assert.Equal(t, "groceries", pa.Text())
	assert.Empty(t, pb.Text())
	assert.Equal(t, types.NotepadSnapshot{WindowID: a, Text: "groceries"}, pa.Snapshot())
}

func TestAboutInfo(t *testing.T) {
	f := newFixture(t, nil)
	about, err := f.host.About(f.open(t, "about_pc"))
	require.NoError(t, err)

	info := about.Info()
	assert.Equal(t, "Windows 6.1", info.Product)
	assert.Equal(t, "GMM Alternate Timeline Edition", info.Edition)
	assert.Equal(t, "Windows is activated via universal consciousness.", info.Activation)
	require.Len(t, info.Hardware, 4)
	assert.Equal(t, types.HardwareLine{Label: "Processor", Value: "Gemini Quantum Core @ 7.0 GHz"}, info.Hardware[0])
	assert.Equal(t, "3 minutes", info.Uptime)
	assert.Equal(t, "3 minutes ago", info.BootedAt)
	assert.NotEmpty(t, info.Memory)
	assert.Positive(t, info.Goroutines)
}

func TestWallpaperPicker(t *testing.T) {
	f := newFixture(t, nil)
	picker, err := f.host.Wallpapers(f.open(t, "wallpaper_changer"))
	require.NoError(t, err)

	list := picker.List()
	require.Len(t, list, 6)
	for _, w := range list {
		assert.False(t, w.Selected)
	}

	require.NoError(t, picker.Choose(2))
	assert.Equal(t, "https://picsum.photos/seed/wall3/1920/1080", f.desktop.Snapshot().Wallpaper)
	assert.True(t, picker.List()[2].Selected)
	assert.Equal(t, 1, f.cues.count(types.CueClick))

	assert.ErrorIs(t, picker.Choose(6), ErrNoSuchChoice)
	assert.ErrorIs(t, picker.Choose(-1), ErrNoSuchChoice)
	assert.Equal(t, 1, f.cues.count(types.CueClick))
}

func TestChatGreeting(t *testing.T) {
	f := newFixture(t, nil)
	chat, err := f.host.Chat(f.open(t, "gemini_chat"))
	require.NoError(t, err)

	snap := chat.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, types.SenderBot, snap.Messages[0].Sender)
	assert.Equal(t, Greeting, snap.Messages[0].Text)
	assert.False(t, snap.Loading)
}

func TestChatStreamsReply(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"Greetings, ", "traveller ", "from 2024."}}
	f := newFixture(t, streamer)
	chat, _ := f.host.Chat(f.open(t, "gemini_chat"))

	var mu sync.Mutex
	var updates []string
	f.host.SubscribeChat(func(s types.ChatSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, s.Messages[len(s.Messages)-1].Text)
	})

	require.True(t, chat.Send("hi"))
	chat.Wait()

	snap := chat.Snapshot()
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, types.SenderUser, snap.Messages[1].Sender)
	assert.Equal(t, "hi", snap.Messages[1].Text)
	assert.Equal(t, "Greetings, traveller from 2024.", snap.Messages[2].Text)
	assert.False(t, snap.Messages[2].Failed)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, f.cues.count(types.CueClick))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"",
		"Greetings, ",
		"Greetings, traveller ",
		"Greetings, traveller from 2024.",
		"Greetings, traveller from 2024.",
	}, updates)
}

func TestChatIgnoresBlankAndBusy(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"a"}, gate: make(chan struct{})}
	f := newFixture(t, streamer)
	chat, _ := f.host.Chat(f.open(t, "gemini_chat"))

	assert.False(t, chat.Send("   "))
	assert.False(t, chat.Send(""))

	require.True(t, chat.Send("first"))
	assert.True(t, chat.Loading())
	assert.False(t, chat.Send("second"), "reply still in flight")

	close(streamer.gate)
	chat.Wait()

	assert.False(t, chat.Loading())
	assert.Len(t, chat.Snapshot().Messages, 3)
	assert.Equal(t, 1, f.cues.count(types.CueClick))
}

func TestChatFailureReplacesPartialText(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"partial"}, err: errors.New("stream aborted")}
	f := newFixture(t, streamer)
	chat, _ := f.host.Chat(f.open(t, "gemini_chat"))

	chat.Send("hi")
	chat.Wait()

	reply := chat.Snapshot().Messages[2]
	assert.Equal(t, FailureText, reply.Text)
	assert.True(t, reply.Failed)
	assert.False(t, chat.Loading())
}

func TestChatUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	chat, _ := f.host.Chat(f.open(t, "gemini_chat"))

	chat.Send("hello?")
	chat.Wait()

	assert.Equal(t, FailureText, chat.Snapshot().Messages[2].Text)
}

func TestChatHistorySkipsFailedTurns(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"ok"}}
	f := newFixture(t, streamer)
	chat, _ := f.host.Chat(f.open(t, "gemini_chat"))

	chat.Send("one")
	chat.Wait()
	chat.Send("two")
	chat.Wait()

	streamer.mu.Lock()
	defer streamer.mu.Unlock()
	require.Len(t, streamer.history, 2)
	assert.Equal(t, []string{"one", "two"}, streamer.prompts)

	second := streamer.history[1]
	require.Len(t, second, 3)
	assert.Equal(t, Greeting, second[0].Text)
	assert.Equal(t, "one", second[1].Text)
	assert.Equal(t, "ok", second[2].Text)
}

func TestChatSanitizesMarkup(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"<script>alert(1)</script>", "<b>bold</b> move"}}
	f := newFixture(t, streamer)
	chat, _ := f.host.Chat(f.open(t, "gemini_chat"))

	chat.Send("<img src=x onerror=alert(1)>hi")
	chat.Wait()

	msgs := chat.Snapshot().Messages
	assert.Equal(t, "hi", msgs[1].Text)
	assert.NotContains(t, msgs[2].Text, "<script>")
	assert.NotContains(t, msgs[2].Text, "<b>")
	assert.Contains(t, msgs[2].Text, "bold move")

	// The assistant still sees what the user typed
	streamer.mu.Lock()
	defer streamer.mu.Unlock()
	assert.Equal(t, "<img src=x onerror=alert(1)>hi", streamer.prompts[0])
}

func TestChatCancelledWhenWindowRemoved(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"never", "arrives"}, gate: make(chan struct{})}
	f := newFixture(t, streamer)
	id := f.open(t, "gemini_chat")
	chat, _ := f.host.Chat(id)

	var mu sync.Mutex
	published := 0
	f.host.SubscribeChat(func(types.ChatSnapshot) {
		mu.Lock()
		published++
		mu.Unlock()
	})

	require.True(t, chat.Send("hello"))
	f.windows.RequestClose(id)
	f.windows.ConfirmClosed(id)

	done := make(chan struct{})
	go func() {
		chat.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream was not cancelled")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, published, "only the send itself is published")
	assert.Empty(t, chat.Snapshot().Messages[2].Text)
	assert.False(t, chat.Send("again"))
}
