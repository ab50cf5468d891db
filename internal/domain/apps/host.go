package apps

import (
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

var (
	ErrNoSuchWindow   = errors.New("no app instance for window")
	ErrWrongKind      = errors.New("window hosts a different app")
	ErrNoSuchChoice   = errors.New("wallpaper index out of range")
	ErrNotImplemented = errors.New("app kind has no behavior")
)

// Catalog resolves application descriptors
type Catalog interface {
	Lookup(id string) (types.Descriptor, bool)
}

// CueNotifier accepts fire-and-forget sound cues
type CueNotifier interface {
	Notify(cue types.Cue)
}

// Desktop is the shell surface apps may change
type Desktop interface {
	SetWallpaper(url string) error
	Wallpaper() string
}

// ChatRecorder tracks assistant reply outcomes
type ChatRecorder interface {
	RecordChat(status string, duration time.Duration, chunks int)
}

// ChatListener observes conversation updates
type ChatListener func(snapshot types.ChatSnapshot)

// Options wires the Host to the rest of the desktop
type Options struct {
	Desktop     Desktop
	Cues        CueNotifier
	Streamer    Streamer
	Uptime      func() time.Duration
	Clock       clock.Clock
	ChatTimeout time.Duration
	Metrics     ChatRecorder
}

type instance interface {
	close()
}

// Host owns per-window app state
type Host struct {
	mu        sync.Mutex
	instances map[int]instance // Protected by mu

	catalog Catalog
	opts    Options
	logger  *zap.Logger

	listenersMu sync.RWMutex
	listeners   []ChatListener
}

// NewHost creates a host with no instances
func NewHost(catalog Catalog, opts Options, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Streamer == nil {
		opts.Streamer = Unavailable{}
	}
	if opts.Uptime == nil {
		started := opts.Clock.Now()
		opts.Uptime = func() time.Duration { return opts.Clock.Now().Sub(started) }
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = 2 * time.Minute
	}

	return &Host{
		instances: make(map[int]instance),
		catalog:   catalog,
		opts:      opts,
		logger:    logger,
	}
}

// SubscribeChat registers a listener for conversation updates
func (h *Host) SubscribeChat(l ChatListener) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, l)
}

// HandleWindowChange creates and drops instances as windows come and go
func (h *Host) HandleWindowChange(change types.WindowChange) {
	switch change.Kind {
	case types.ChangeOpened:
		h.attach(change.WindowID, change.AppID)
	case types.ChangeRemoved:
		h.detach(change.WindowID)
	}
}

func (h *Host) attach(windowID int, appID string) {
	desc, ok := h.catalog.Lookup(appID)
	if !ok {
		return
	}

	inst, err := h.build(windowID, desc.Kind)
	if err != nil {
		h.logger.Warn("no app behavior", zap.String("app_id", appID), zap.Error(err))
		return
	}

	h.mu.Lock()
	h.instances[windowID] = inst
	h.mu.Unlock()

	h.logger.Debug("app attached", zap.Int("window_id", windowID), zap.String("kind", string(desc.Kind)))
}

func (h *Host) build(windowID int, kind types.AppKind) (instance, error) {
	switch kind {
	case types.KindNotepad:
		return newNotepad(windowID), nil
	case types.KindAbout:
		return newAbout(h.opts.Clock, h.opts.Uptime), nil
	case types.KindWallpaper:
		return newWallpaperPicker(h.opts.Desktop, h.opts.Cues), nil
	case types.KindChat:
		return newChat(windowID, chatDeps{
			streamer: h.opts.Streamer,
			cues:     h.opts.Cues,
			clock:    h.opts.Clock,
			timeout:  h.opts.ChatTimeout,
			metrics:  h.opts.Metrics,
			publish:  h.publishChat,
			logger:   h.logger.Named("chat"),
		}), nil
	}
	return nil, ErrNotImplemented
}

func (h *Host) detach(windowID int) {
	h.mu.Lock()
	inst, ok := h.instances[windowID]
	delete(h.instances, windowID)
	h.mu.Unlock()

	if ok {
		inst.close()
	}
}

// Len returns the number of live instances
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.instances)
}

// Close drops every instance, cancelling in-flight chat replies
func (h *Host) Close() {
	h.mu.Lock()
	instances := h.instances
	h.instances = make(map[int]instance)
	h.mu.Unlock()

	for _, inst := range instances {
		inst.close()
	}
}

// Notepad returns the notepad hosted in windowID
func (h *Host) Notepad(windowID int) (*Notepad, error) {
	return lookup[*Notepad](h, windowID)
}

// About returns the About panel hosted in windowID
func (h *Host) About(windowID int) (*About, error) {
	return lookup[*About](h, windowID)
}

// Wallpapers returns the wallpaper picker hosted in windowID
func (h *Host) Wallpapers(windowID int) (*WallpaperPicker, error) {
	return lookup[*WallpaperPicker](h, windowID)
}

// Chat returns the conversation hosted in windowID
func (h *Host) Chat(windowID int) (*Chat, error) {
	return lookup[*Chat](h, windowID)
}

func lookup[T instance](h *Host, windowID int) (T, error) {
	h.mu.Lock()
	inst, ok := h.instances[windowID]
	h.mu.Unlock()

	var zero T
	if !ok {
		return zero, ErrNoSuchWindow
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, ErrWrongKind
	}
	return typed, nil
}

func (h *Host) publishChat(snap types.ChatSnapshot) {
	h.listenersMu.RLock()
	listeners := make([]ChatListener, len(h.listeners))
	copy(listeners, h.listeners)
	h.listenersMu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}
