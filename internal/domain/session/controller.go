package session

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/window"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/id"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// Windows is the part of the window manager the controller drives
type Windows interface {
	Len() int
	RequestCloseAll() int
	Subscribe(l window.Listener)
}

// CueNotifier accepts fire-and-forget sound cues
type CueNotifier interface {
	Notify(cue types.Cue)
}

// StartMenu is closed when shutdown begins
type StartMenu interface {
	CloseStartMenu() bool
}

// Recorder tracks phase metrics
type Recorder interface {
	RecordPhase(phase string, ordinal int)
}

// Listener observes phase changes
type Listener func(snapshot types.PhaseSnapshot)

// Timings holds the fixed presentation delays
type Timings struct {
	Boot     time.Duration // Boot screen fully visible
	Fade     time.Duration // Boot screen fade-out
	Settle   time.Duration // After the last window closes
	Fallback time.Duration // Shutdown with no windows open
}

// DefaultTimings returns the stock desktop delays
func DefaultTimings() Timings {
	return Timings{
		Boot:     3 * time.Second,
		Fade:     500 * time.Millisecond,
		Settle:   500 * time.Millisecond,
		Fallback: 1500 * time.Millisecond,
	}
}

// Controller owns the session phase
type Controller struct {
	mu        sync.Mutex
	id        id.SessionID
	phase     types.Phase
	fadingOut bool
	startedAt time.Time
	runningAt *time.Time
	started   bool
	closed    bool
	finalDue  bool
	timers    []clock.Timer

	windows   Windows
	cues      CueNotifier
	startMenu StartMenu
	metrics   Recorder
	clock     clock.Clock
	timings   Timings
	logger    *zap.Logger

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewController creates a controller in the booting phase and subscribes it
// to window removals. Call Start to begin the boot timer.
func NewController(windows Windows, cues CueNotifier, clk clock.Clock, timings Timings, logger *zap.Logger) *Controller {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		id:        id.NewSessionID(),
		phase:     types.PhaseBooting,
		startedAt: clk.Now(),
		windows:   windows,
		cues:      cues,
		clock:     clk,
		timings:   timings,
		logger:    logger,
	}
	windows.Subscribe(c.onWindowChange)
	return c
}

// WithStartMenu closes menu when shutdown begins
func (c *Controller) WithStartMenu(menu StartMenu) *Controller {
	c.startMenu = menu
	return c
}

// WithMetrics adds phase tracking
func (c *Controller) WithMetrics(metrics Recorder) *Controller {
	c.metrics = metrics
	return c
}

// Subscribe registers a phase listener
func (c *Controller) Subscribe(l Listener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Start schedules boot completion. Later calls do nothing.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.startedAt = c.clock.Now()
	c.schedule(c.timings.Boot, c.beginFade)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("session booting", zap.String("session_id", snap.SessionID), zap.Duration("boot", c.timings.Boot+c.timings.Fade))
	c.publish(snap)
}

func (c *Controller) beginFade() {
	c.mu.Lock()
	if c.closed || c.phase != types.PhaseBooting {
		c.mu.Unlock()
		return
	}
	c.fadingOut = true
	c.schedule(c.timings.Fade, c.finishBoot)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) finishBoot() {
	c.mu.Lock()
	if c.closed || c.phase != types.PhaseBooting {
		c.mu.Unlock()
		return
	}
	now := c.clock.Now()
	c.phase = types.PhaseRunning
	c.fadingOut = false
	c.runningAt = &now
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.cue(types.CueStartup)
	c.logger.Info("session running", zap.String("session_id", snap.SessionID))
	c.publish(snap)
}

// RequestShutdown closes every window and moves to shutdown_pending. Only
// valid while running.
func (c *Controller) RequestShutdown() bool {
	c.mu.Lock()
	if c.closed || c.phase != types.PhaseRunning {
		c.mu.Unlock()
		return false
	}
	c.phase = types.PhaseShutdownPending
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.cue(types.CueShutdown)
	if c.startMenu != nil {
		c.startMenu.CloseStartMenu()
	}

	open := c.windows.Len()
	c.logger.Info("session shutting down", zap.Int("windows", open))
	c.publish(snap)

	if open == 0 {
		c.mu.Lock()
		c.scheduleFinalLocked(c.timings.Fallback)
		c.mu.Unlock()
		return true
	}

	// Removals during the bulk close are observed through onWindowChange.
	// Minimized windows skip the close animation and are removed here
	// without a confirmClosed.
	c.windows.RequestCloseAll()
	return true
}

func (c *Controller) onWindowChange(change types.WindowChange) {
	if change.Kind != types.ChangeRemoved || change.Remaining != 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == types.PhaseShutdownPending {
		c.scheduleFinalLocked(c.timings.Settle)
	}
}

// scheduleFinalLocked arms the final transition once (must hold lock)
func (c *Controller) scheduleFinalLocked(d time.Duration) {
	if c.finalDue || c.closed {
		return
	}
	c.finalDue = true
	c.schedule(d, c.finishShutdown)
}

func (c *Controller) finishShutdown() {
	c.mu.Lock()
	if c.closed || c.phase != types.PhaseShutdownPending {
		c.mu.Unlock()
		return
	}
	c.phase = types.PhaseShutdownFinal
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("session shut down", zap.String("session_id", snap.SessionID))
	c.publish(snap)
}

// Phase returns the current phase
func (c *Controller) Phase() types.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// AcceptsInput reports whether user intents should be applied
func (c *Controller) AcceptsInput() bool {
	return c.Phase() == types.PhaseRunning
}

// Snapshot returns the read-only session view
func (c *Controller) Snapshot() types.PhaseSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Uptime returns how long the session has existed
func (c *Controller) Uptime() time.Duration {
	c.mu.Lock()
	started := c.startedAt
	c.mu.Unlock()
	return c.clock.Now().Sub(started)
}

// Close cancels outstanding timers. The phase is frozen afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
}

// schedule must be called with mu held
func (c *Controller) schedule(d time.Duration, fn func()) {
	c.timers = append(c.timers, c.clock.AfterFunc(d, fn))
}

func (c *Controller) snapshotLocked() types.PhaseSnapshot {
	snap := types.PhaseSnapshot{
		SessionID: c.id.String(),
		Phase:     c.phase,
		FadingOut: c.fadingOut,
		StartedAt: c.startedAt,
	}
	if c.runningAt != nil {
		at := *c.runningAt
		snap.RunningAt = &at
	}
	return snap
}

func (c *Controller) cue(cue types.Cue) {
	if c.cues != nil {
		c.cues.Notify(cue)
	}
}

func (c *Controller) publish(snap types.PhaseSnapshot) {
	if c.metrics != nil {
		c.metrics.RecordPhase(string(snap.Phase), snap.Phase.Ordinal())
	}

	c.listenersMu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}
