package session

import (
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/registry"
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

func (r *cueRecorder) all() []types.Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Cue(nil), r.cues...)
}

type menuStub struct{ closes int }

func (s *menuStub) CloseStartMenu() bool {
	s.closes++
	return true
}

type fixture struct {
	clock   *clock.Manual
	windows *window.Manager
	cues    *cueRecorder
	ctrl    *Controller
	phases  []types.Phase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock: clock.NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		cues:  &cueRecorder{},
	}
	f.windows = window.NewManager(registry.MustDefault(), f.cues, nil)
	f.ctrl = NewController(f.windows, f.cues, f.clock, DefaultTimings(), nil)
	f.ctrl.Subscribe(func(s types.PhaseSnapshot) {
		if len(f.phases) == 0 || f.phases[len(f.phases)-1] != s.Phase {
			f.phases = append(f.phases, s.Phase)
		}
	})
	t.Cleanup(f.ctrl.Close)
	return f
}

func (f *fixture) boot(t *testing.T) {
	t.Helper()
	f.ctrl.Start()
	f.clock.Advance(3500 * time.Millisecond)
	require.Equal(t, types.PhaseRunning, f.ctrl.Phase())
}

func TestBootSequence(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, types.PhaseBooting, f.ctrl.Phase())
	assert.False(t, f.ctrl.AcceptsInput())

	f.ctrl.Start()
	f.ctrl.Start()

	f.clock.Advance(2999 * time.Millisecond)
	snap := f.ctrl.Snapshot()
	assert.Equal(t, types.PhaseBooting, snap.Phase)
	assert.False(t, snap.FadingOut)

	f.clock.Advance(time.Millisecond)
	snap = f.ctrl.Snapshot()
	assert.Equal(t, types.PhaseBooting, snap.Phase)
	assert.True(t, snap.FadingOut)
	assert.Empty(t, f.cues.all())

	f.clock.Advance(500 * time.Millisecond)
	snap = f.ctrl.Snapshot()
	assert.Equal(t, types.PhaseRunning, snap.Phase)
	assert.False(t, snap.FadingOut)
	require.NotNil(t, snap.RunningAt)
	assert.Equal(t, 3500*time.Millisecond, snap.RunningAt.Sub(snap.StartedAt))
	assert.True(t, f.ctrl.AcceptsInput())
	assert.Equal(t, []types.Cue{types.CueStartup}, f.cues.all())
	assert.NotEmpty(t, snap.SessionID)
}

func TestShutdownRejectedWhileBooting(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()

	assert.False(t, f.ctrl.RequestShutdown())
	assert.Equal(t, types.PhaseBooting, f.ctrl.Phase())
}

func TestShutdownWithNoWindowsUsesFallback(t *testing.T) {
	f := newFixture(t)
	menu := &menuStub{}
	f.ctrl.WithStartMenu(menu)
	f.boot(t)

	require.True(t, f.ctrl.RequestShutdown())
	assert.Equal(t, types.PhaseShutdownPending, f.ctrl.Phase())
	assert.False(t, f.ctrl.AcceptsInput())
	assert.Equal(t, 1, menu.closes)
	assert.Equal(t, []types.Cue{types.CueStartup, types.CueShutdown}, f.cues.all())

	f.clock.Advance(1499 * time.Millisecond)
	assert.Equal(t, types.PhaseShutdownPending, f.ctrl.Phase())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, types.PhaseShutdownFinal, f.ctrl.Phase())

	assert.Equal(t, []types.Phase{
		types.PhaseBooting,
		types.PhaseRunning,
		types.PhaseShutdownPending,
		types.PhaseShutdownFinal,
	}, f.phases)
}

func TestShutdownWaitsForEveryWindow(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	var opened []int
	for _, app := range []string{"notepad", "notepad", "about_pc"} {
		win, _ := f.windows.Open(app)
		opened = append(opened, win.ID)
	}

	require.True(t, f.ctrl.RequestShutdown())
	for _, win := range f.windows.Snapshot() {
		assert.True(t, win.IsClosing)
	}

	// Well past the fallback delay nothing happens while windows remain
	f.clock.Advance(10 * time.Second)
	assert.Equal(t, types.PhaseShutdownPending, f.ctrl.Phase())

	for i, id := range opened {
		f.windows.ConfirmClosed(id)
		f.clock.Advance(time.Second)
		if i < len(opened)-1 {
			assert.Equal(t, types.PhaseShutdownPending, f.ctrl.Phase(), "after %d confirmations", i+1)
		}
	}
	assert.Equal(t, types.PhaseShutdownFinal, f.ctrl.Phase())
}

func TestShutdownSettleDelay(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	win, _ := f.windows.Open("notepad")
	f.ctrl.RequestShutdown()
	f.windows.ConfirmClosed(win.ID)

	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, types.PhaseShutdownPending, f.ctrl.Phase())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, types.PhaseShutdownFinal, f.ctrl.Phase())

	// Late confirmations are harmless
	f.windows.ConfirmClosed(win.ID)
	f.clock.Advance(time.Second)
	assert.Equal(t, types.PhaseShutdownFinal, f.ctrl.Phase())
}

func TestShutdownWithOnlyMinimizedWindows(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	win, _ := f.windows.Open("notepad")
	f.windows.RequestMinimize(win.ID)
	f.windows.ConfirmMinimized(win.ID)

	f.ctrl.RequestShutdown()
	assert.Zero(t, f.windows.Len())

	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, types.PhaseShutdownFinal, f.ctrl.Phase())
}

func TestWindowRemovalWhileRunningIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	win, _ := f.windows.Open("notepad")
	f.windows.RequestClose(win.ID)
	f.windows.ConfirmClosed(win.ID)
	f.clock.Advance(time.Minute)

	assert.Equal(t, types.PhaseRunning, f.ctrl.Phase())
	assert.Zero(t, f.clock.Pending())
}

func TestShutdownOnlyOnce(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	require.True(t, f.ctrl.RequestShutdown())
	assert.False(t, f.ctrl.RequestShutdown())
	assert.Len(t, filter(f.cues.all(), types.CueShutdown), 1)

	f.clock.Advance(2 * time.Second)
	assert.False(t, f.ctrl.RequestShutdown())
	assert.Equal(t, types.PhaseShutdownFinal, f.ctrl.Phase())
}

func TestCloseCancelsTimers(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	require.Equal(t, 1, f.clock.Pending())

	f.ctrl.Close()
	assert.Zero(t, f.clock.Pending())

	f.clock.Advance(time.Minute)
	assert.Equal(t, types.PhaseBooting, f.ctrl.Phase())
	assert.Empty(t, f.cues.all())
}

func TestUptime(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	f.clock.Advance(90 * time.Second)

	assert.Equal(t, 90*time.Second, f.ctrl.Uptime())
}

type phaseRecorder struct{ phases []string }

func (p *phaseRecorder) RecordPhase(phase string, ordinal int) {
	p.phases = append(p.phases, phase)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	rec := &phaseRecorder{}
	f.ctrl.WithMetrics(rec)
	f.boot(t)

	assert.Equal(t, []string{"booting", "booting", "running"}, rec.phases)
}

func filter(cues []types.Cue, want types.Cue) []types.Cue {
	var out []types.Cue
	for _, c := range cues {
		if c == want {
			out = append(out, c)
		}
	}
	return out
}
