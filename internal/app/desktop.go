package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/apps"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/registry"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/shell"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/window"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// CueNotifier accepts fire-and-forget sound cues
type CueNotifier interface {
	Notify(cue types.Cue)
}

type silent struct{}

func (silent) Notify(types.Cue) {}

// Options configures a Desktop
type Options struct {
	Catalog     *registry.Registry
	Cues        CueNotifier
	Clock       clock.Clock
	Timings     session.Timings
	Streamer    apps.Streamer
	ChatTimeout time.Duration
	Metrics     *monitoring.Metrics
	Random      func() float64 // Spawn placement source, [0,1)
}

// Desktop is one running desktop session
type Desktop struct {
	Catalog *registry.Registry
	Windows *window.Manager
	Session *session.Controller
	Shell   *shell.Desktop
	Apps    *apps.Host

	// Serializes the phase check with the mutation of a user intent, so
	// no window opens between the shutdown check and RequestCloseAll
	intentMu sync.Mutex

	clock  clock.Clock
	logger *zap.Logger
}

// New wires the desktop components together. The session stays in the
// booting phase until Start.
func New(opts Options, logger *zap.Logger) *Desktop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = registry.MustDefault()
	}
	if opts.Cues == nil {
		opts.Cues = silent{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Timings == (session.Timings{}) {
		opts.Timings = session.DefaultTimings()
	}

	desk := shell.NewDesktop()

	windows := window.NewManager(opts.Catalog, opts.Cues, logger.Named("window")).
		WithStartMenu(desk)
	if opts.Random != nil {
		windows.WithRandom(opts.Random)
	}

	controller := session.NewController(windows, opts.Cues, opts.Clock, opts.Timings, logger.Named("session")).
		WithStartMenu(desk)

	hostOpts := apps.Options{
		Desktop:     desk,
		Cues:        opts.Cues,
		Streamer:    opts.Streamer,
		Uptime:      controller.Uptime,
		Clock:       opts.Clock,
		ChatTimeout: opts.ChatTimeout,
	}
	if opts.Metrics != nil {
		windows.WithMetrics(opts.Metrics)
		controller.WithMetrics(opts.Metrics)
		hostOpts.Metrics = opts.Metrics
	}

	host := apps.NewHost(opts.Catalog, hostOpts, logger.Named("apps"))
	windows.Subscribe(host.HandleWindowChange)

	return &Desktop{
		Catalog: opts.Catalog,
		Windows: windows,
		Session: controller,
		Shell:   desk,
		Apps:    host,
		clock:   opts.Clock,
		logger:  logger,
	}
}

// Start begins the boot timer
func (d *Desktop) Start() {
	d.Session.Start()
}

// Close stops pending timers and cancels in-flight chat replies
func (d *Desktop) Close() {
	d.Session.Close()
	d.Apps.Close()
}

// Clock returns the desktop's time source
func (d *Desktop) Clock() clock.Clock {
	return d.clock
}

// Snapshot returns everything the browser renders
func (d *Desktop) Snapshot() types.DesktopSnapshot {
	return types.DesktopSnapshot{
		Session: d.Session.Snapshot(),
		Shell:   d.Shell.Snapshot(),
		Windows: d.Windows.Snapshot(),
		Taskbar: d.Windows.Taskbar(),
	}
}

// Apply performs an intent. It returns ErrNotAccepting for user intents
// outside the running phase and ErrUnknownIntent for unknown kinds.
func (d *Desktop) Apply(in Intent) (Result, error) {
	if !in.Kind.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Kind)
	}
	if !in.Kind.Confirmation() {
		d.intentMu.Lock()
		defer d.intentMu.Unlock()
		if !d.Session.AcceptsInput() {
			return Result{}, fmt.Errorf("%s: %w (phase %s)", in.Kind, ErrNotAccepting, d.Session.Phase())
		}
	}

	var ok bool
	switch in.Kind {
	case IntentOpen:
		win, opened := d.Windows.Open(in.AppID)
		if !opened {
			return Result{}, nil
		}
		return Result{Success: true, Window: &win}, nil
	case IntentFocus:
		ok = d.Windows.Focus(in.WindowID)
	case IntentMove:
		ok = d.Windows.Move(in.WindowID, in.X, in.Y)
	case IntentMinimize:
		ok = d.Windows.RequestMinimize(in.WindowID)
	case IntentMinimized:
		ok = d.Windows.ConfirmMinimized(in.WindowID)
	case IntentRestore:
		ok = d.Windows.Restore(in.WindowID)
	case IntentClose:
		ok = d.Windows.RequestClose(in.WindowID)
	case IntentClosed:
		ok = d.Windows.ConfirmClosed(in.WindowID)
	case IntentToggleStartMenu:
		d.Shell.ToggleStartMenu()
		ok = true
	case IntentShutdown:
		ok = d.Session.RequestShutdown()
	}

	res := Result{Success: ok}
	if ok && in.Kind != IntentClosed && in.Kind != IntentToggleStartMenu && in.Kind != IntentShutdown {
		if win, found := d.Windows.Get(in.WindowID); found {
			res.Window = &win
		}
	}
	if in.Kind == IntentShutdown && ok {
		res.Affected = d.Windows.Len()
	}

	d.logger.Debug("intent applied",
		zap.String("kind", string(in.Kind)),
		zap.Int("window_id", in.WindowID),
		zap.Bool("success", ok))
	return res, nil
}
