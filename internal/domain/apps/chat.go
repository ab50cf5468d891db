package apps

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/id"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	// Greeting opens every conversation
	Greeting = "Hello! I am G-Assistant. How can I help you today?"
	// FailureText replaces a reply that could not be completed
	FailureText = "Sorry, I encountered an error. Please try again."
)

// ErrAssistantUnavailable is returned by Unavailable
var ErrAssistantUnavailable = errors.New("assistant is not configured")

// Streamer produces a reply to prompt given the earlier conversation.
// yield receives text increments in generation order; returning an error
// from yield aborts the stream.
type Streamer interface {
	Stream(ctx context.Context, history []types.ChatMessage, prompt string, yield func(chunk string) error) error
}

// Unavailable is the Streamer used when no assistant backend is configured
type Unavailable struct{}

// Stream always fails
func (Unavailable) Stream(context.Context, []types.ChatMessage, string, func(string) error) error {
	return ErrAssistantUnavailable
}

type chatDeps struct {
	streamer Streamer
	cues     CueNotifier
	clock    clock.Clock
	timeout  time.Duration
	metrics  ChatRecorder
	publish  ChatListener
	logger   *zap.Logger
}

// entry keeps the raw text for the assistant next to the sanitized message
// shown to browsers
type entry struct {
	msg types.ChatMessage
	raw string
}

// Chat is one conversation with the assistant
type Chat struct {
	windowID int
	deps     chatDeps
	policy   *bluemonday.Policy

	mu      sync.Mutex
	entries []entry
	loading bool
	closed  bool
	cancel  context.CancelFunc

	wg sync.WaitGroup
}

func newChat(windowID int, deps chatDeps) *Chat {
	c := &Chat{
		windowID: windowID,
		deps:     deps,
		policy:   bluemonday.StrictPolicy(),
	}
	c.entries = []entry{c.newEntry(types.SenderBot, Greeting)}
	return c
}

// Send posts prompt and starts streaming the reply. It reports false when
// the prompt is blank, a reply is still in flight, or the window is gone.
func (c *Chat) Send(prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		return false
	}

	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return false
	}

	history := c.historyLocked()
	c.entries = append(c.entries, c.newEntry(types.SenderUser, prompt), c.newEntry(types.SenderBot, ""))
	reply := len(c.entries) - 1
	c.loading = true

	ctx, cancel := context.WithTimeout(context.Background(), c.deps.timeout)
	c.cancel = cancel
	snap := c.snapshotLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	if c.deps.cues != nil {
		c.deps.cues.Notify(types.CueClick)
	}
	c.publish(snap)

	go c.stream(ctx, history, prompt, reply)
	return true
}

func (c *Chat) stream(ctx context.Context, history []types.ChatMessage, prompt string, reply int) {
	defer c.wg.Done()

	start := c.deps.clock.Now()
	chunks := 0
	var text strings.Builder

	err := c.deps.streamer.Stream(ctx, history, prompt, func(chunk string) error {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return context.Canceled
		}
		chunks++
		text.WriteString(chunk)
		c.setTextLocked(reply, text.String())
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.publish(snap)
		return nil
	})

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
	if c.closed {
		c.mu.Unlock()
		c.record("cancelled", start, chunks)
		return
	}

	status := "success"
	if err != nil {
		status = "error"
		c.setTextLocked(reply, FailureText)
		c.entries[reply].msg.Failed = true
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.deps.logger.Warn("assistant reply failed",
			zap.Int("window_id", c.windowID),
			zap.Int("chunks", chunks),
			zap.Error(err))
	}
	c.record(status, start, chunks)
	c.publish(snap)
}

// Snapshot returns the conversation
func (c *Chat) Snapshot() types.ChatSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Loading reports whether a reply is streaming
func (c *Chat) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Wait blocks until the in-flight reply, if any, has finished
func (c *Chat) Wait() {
	c.wg.Wait()
}

func (c *Chat) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// historyLocked returns earlier turns worth sending upstream (must hold lock)
func (c *Chat) historyLocked() []types.ChatMessage {
	history := make([]types.ChatMessage, 0, len(c.entries))
	for _, e := range c.entries {
		if e.msg.Failed || e.raw == "" {
			continue
		}
		msg := e.msg
		msg.Text = e.raw
		history = append(history, msg)
	}
	return history
}

func (c *Chat) setTextLocked(i int, raw string) {
	c.entries[i].raw = raw
	c.entries[i].msg.Text = c.policy.Sanitize(raw)
}

func (c *Chat) snapshotLocked() types.ChatSnapshot {
	msgs := make([]types.ChatMessage, len(c.entries))
	for i, e := range c.entries {
		msgs[i] = e.msg
	}
	return types.ChatSnapshot{WindowID: c.windowID, Messages: msgs, Loading: c.loading}
}

func (c *Chat) newEntry(sender types.Sender, raw string) entry {
	return entry{
		msg: types.ChatMessage{
			ID:        id.NewMessageID().String(),
			Sender:    sender,
			Text:      c.policy.Sanitize(raw),
			CreatedAt: c.deps.clock.Now(),
		},
		raw: raw,
	}
}

func (c *Chat) record(status string, start time.Time, chunks int) {
	if c.deps.metrics != nil {
		c.deps.metrics.RecordChat(status, c.deps.clock.Now().Sub(start), chunks)
	}
}

func (c *Chat) publish(snap types.ChatSnapshot) {
	if c.deps.publish != nil {
		c.deps.publish(snap)
	}
}
