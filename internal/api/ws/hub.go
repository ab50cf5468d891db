package ws

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/app"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Event types pushed to browsers
const (
	EventWelcome       = "welcome"
	EventSnapshot      = "snapshot"
	EventPhase         = "phase"
	EventCue           = "cue"
	EventClock         = "clock"
	EventChat          = "chat"
	EventResult        = "result"
	EventPong          = "pong"
	EventAudioUnlocked = "audio_unlocked"
	EventError         = "error"
)

// AudioUnlocker is told when a browser reports a user gesture
type AudioUnlocker interface {
	Unlock()
}

// Recorder tracks WebSocket metrics
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// Options configures a Hub
type Options struct {
	Audio        AudioUnlocker
	Metrics      Recorder
	Location     *time.Location
	TickInterval time.Duration
	SendBuffer   int
}

// Hub tracks connected browsers and fans desktop events out to them
type Hub struct {
	desktop *app.Desktop
	opts    Options
	logger  *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a hub and subscribes it to the desktop
func NewHub(desktop *app.Desktop, opts Options, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}

	h := &Hub{
		desktop: desktop,
		opts:    opts,
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}

	desktop.Windows.Subscribe(func(types.WindowChange) { h.publishSnapshot() })
	desktop.Shell.Subscribe(func(types.ShellSnapshot) { h.publishSnapshot() })
	desktop.Session.Subscribe(func(snap types.PhaseSnapshot) {
		h.Broadcast(EventPhase, snap)
		h.publishSnapshot()
	})
	desktop.Apps.SubscribeChat(func(snap types.ChatSnapshot) {
		h.Broadcast(EventChat, snap)
	})
	return h
}

// PublishCue forwards a delivered cue to browsers. It is a sound.Sink.
func (h *Hub) PublishCue(cue types.Cue) {
	h.Broadcast(EventCue, payload{"cue": cue})
}

// Run pushes clock readings until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case <-ticker.C:
			h.Tick()
		}
	}
}

// Tick broadcasts the current clock reading
func (h *Hub) Tick() {
	h.Broadcast(EventClock, clock.Read(h.desktop.Clock(), h.opts.Location))
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes one event and queues it for every client
func (h *Hub) Broadcast(eventType string, data interface{}) {
	frame, err := h.encode(eventType, data, "")
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(frame) {
			h.logger.Warn("client too slow, disconnecting", zap.String("client_id", c.id.String()))
			c.close()
		}
	}
	if h.opts.Metrics != nil && len(targets) > 0 {
		h.opts.Metrics.RecordWSMessage("out", eventType)
	}
}

func (h *Hub) publishSnapshot() {
	h.Broadcast(EventSnapshot, h.desktop.Snapshot())
}

func (h *Hub) encode(eventType string, data interface{}, message string) ([]byte, error) {
	return sonic.Marshal(types.WSEvent{
		Type:      eventType,
		Data:      data,
		Message:   message,
		Timestamp: h.desktop.Clock().Now().Unix(),
	})
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.opts.Metrics != nil {
		h.opts.Metrics.IncWSConnections()
	}
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if h.opts.Metrics != nil {
		h.opts.Metrics.DecWSConnections()
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	h.closed = true
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.close()
	}
}

// payload is the shape of small ad hoc event bodies
type payload map[string]interface{}
