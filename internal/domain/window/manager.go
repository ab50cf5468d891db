package window

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

const (
	// FirstZIndex is the stacking value handed to the first window
	FirstZIndex = 10

	spawnMinX   = 50
	spawnRangeX = 200
	spawnMinY   = 50
	spawnRangeY = 100
)

// Catalog resolves application descriptors
type Catalog interface {
	Lookup(id string) (types.Descriptor, bool)
}

// CueNotifier accepts fire-and-forget sound cues
type CueNotifier interface {
	Notify(cue types.Cue)
}

// StartMenu is closed whenever a new window opens
type StartMenu interface {
	CloseStartMenu() bool
}

// Recorder tracks window metrics
type Recorder interface {
	RecordWindowEvent(kind, appID string)
	SetWindowsTracked(count int)
}

// Listener observes applied changes
type Listener func(change types.WindowChange)

// Manager is the window collection
type Manager struct {
	mu      sync.Mutex
	windows map[int]*types.Window // Protected by mu
	order   []int                 // Creation order, protected by mu
	nextID  int                   // Protected by mu
	nextZ   int                   // Protected by mu
	random  func() float64        // Protected by mu

	catalog   Catalog
	cues      CueNotifier
	startMenu StartMenu
	metrics   Recorder
	logger    *zap.Logger

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewManager creates an empty window manager
func NewManager(catalog Catalog, cues CueNotifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		windows: make(map[int]*types.Window),
		nextZ:   FirstZIndex,
		random:  rand.Float64,
		catalog: catalog,
		cues:    cues,
		logger:  logger,
	}
}

// WithStartMenu closes menu whenever a window is created
func (m *Manager) WithStartMenu(menu StartMenu) *Manager {
	m.startMenu = menu
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics Recorder) *Manager {
	m.metrics = metrics
	return m
}

// WithRandom replaces the spawn position source, which must return values in [0,1)
func (m *Manager) WithRandom(random func() float64) *Manager {
	m.mu.Lock()
	m.random = random
	m.mu.Unlock()
	return m
}

// Subscribe registers a change listener
func (m *Manager) Subscribe(l Listener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Open creates a window for appID, or brings the existing one forward when
// the application is single-instance. Unknown applications are ignored.
func (m *Manager) Open(appID string) (types.Window, bool) {
	desc, ok := m.catalog.Lookup(appID)
	if !ok {
		m.logger.Debug("open ignored: unknown app", zap.String("app_id", appID))
		return types.Window{}, false
	}

	m.mu.Lock()
	if !desc.AllowMultiple {
		if existing := m.findLiveLocked(appID); existing != nil {
			changes := []types.WindowChange{m.raiseLocked(existing, types.ChangeFocused)}
			restored := existing.IsMinimized
			if restored {
				existing.IsMinimized = false
				changes = append(changes, m.raiseLocked(existing, types.ChangeRestored))
			}
			win := *existing
			m.mu.Unlock()

			if restored {
				m.cue(types.CueOpen)
			}
			m.publish(changes...)
			return win, true
		}
	}

	size := desc.WindowSize()
	win := &types.Window{
		ID:    m.nextID,
		AppID: desc.ID,
		Title: desc.Title,
		Icon:  desc.Icon,
		Position: types.Position{
			X: m.random()*spawnRangeX + spawnMinX,
			Y: m.random()*spawnRangeY + spawnMinY,
		},
		Size:   size,
		ZIndex: m.nextZ,
	}
	m.nextID++
	m.nextZ++
	m.windows[win.ID] = win
	m.order = append(m.order, win.ID)
	change := m.changeLocked(types.ChangeOpened, win)
	created := *win
	m.mu.Unlock()

	m.cue(types.CueOpen)
	if m.startMenu != nil {
		m.startMenu.CloseStartMenu()
	}
	m.logger.Debug("window opened", zap.Int("id", created.ID), zap.String("app_id", created.AppID))
	m.publish(change)
	return created, true
}

// RequestClose marks a window as closing. The window stays tracked until
// ConfirmClosed.
func (m *Manager) RequestClose(id int) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.IsClosing {
		m.mu.Unlock()
		return false
	}
	win.IsClosing = true
	change := m.changeLocked(types.ChangeClosing, win)
	m.mu.Unlock()

	m.cue(types.CueClose)
	m.publish(change)
	return true
}

// ConfirmClosed removes a window. Idempotent.
func (m *Manager) ConfirmClosed(id int) bool {
	m.mu.Lock()
	change, ok := m.removeLocked(id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.logger.Debug("window removed", zap.Int("id", id), zap.Int("remaining", change.Remaining))
	m.publish(change)
	return true
}

// RequestCloseAll marks every window as closing and returns how many windows
// are still tracked. Minimized windows are not rendered, so no animation will
// ever confirm them; they are removed straight away.
func (m *Manager) RequestCloseAll() int {
	m.mu.Lock()
	var changes []types.WindowChange
	for _, id := range append([]int(nil), m.order...) {
		win := m.windows[id]
		switch {
		case win.IsMinimized:
			// Skips the close animation: no confirmClosed will arrive
			win.IsClosing = true
			change, _ := m.removeLocked(id)
			changes = append(changes, change)
		case !win.IsClosing:
			win.IsClosing = true
			changes = append(changes, m.changeLocked(types.ChangeClosing, win))
		}
	}
	remaining := len(m.windows)
	m.mu.Unlock()

	m.publish(changes...)
	return remaining
}

// RequestMinimize starts the minimize animation of a visible window
func (m *Manager) RequestMinimize(id int) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.IsMinimized || win.IsClosing {
		m.mu.Unlock()
		return false
	}
	win.IsMinimizing = true
	change := m.changeLocked(types.ChangeMinimizing, win)
	m.mu.Unlock()

	m.cue(types.CueMinimize)
	m.publish(change)
	return true
}

// ConfirmMinimized hides a window once its minimize animation finished.
// Idempotent.
func (m *Manager) ConfirmMinimized(id int) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || (win.IsMinimized && !win.IsMinimizing) {
		m.mu.Unlock()
		return false
	}
	win.IsMinimized = true
	win.IsMinimizing = false
	change := m.changeLocked(types.ChangeMinimized, win)
	m.mu.Unlock()

	m.publish(change)
	return true
}

// Restore shows a minimized window in front of all others
func (m *Manager) Restore(id int) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	// A closing window is still restorable: it must be shown again so its
	// close animation can run and confirm the removal.
	if !ok || !win.IsMinimized {
		m.mu.Unlock()
		return false
	}
	win.IsMinimized = false
	change := m.raiseLocked(win, types.ChangeRestored)
	m.mu.Unlock()

	m.cue(types.CueOpen)
	m.publish(change)
	return true
}

// Focus brings a window to the front
func (m *Manager) Focus(id int) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.IsClosing {
		m.mu.Unlock()
		return false
	}
	change := m.raiseLocked(win, types.ChangeFocused)
	m.mu.Unlock()

	m.publish(change)
	return true
}

// Move sets a window's top-left corner. Positions are not clamped.
func (m *Manager) Move(id int, x, y float64) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.IsClosing {
		m.mu.Unlock()
		return false
	}
	win.Position = types.Position{X: x, Y: y}
	change := m.changeLocked(types.ChangeMoved, win)
	m.mu.Unlock()

	m.publish(change)
	return true
}

// Get retrieves a copy of a window
func (m *Manager) Get(id int) (types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, ok := m.windows[id]
	if !ok {
		return types.Window{}, false
	}
	return *win, true
}

// Len returns the number of tracked windows, closing ones included
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Snapshot returns copies of all windows ordered by z-index ascending
func (m *Manager) Snapshot() []types.Window {
	m.mu.Lock()
	out := m.copyLocked()
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Visible returns the windows to render, back to front
func (m *Manager) Visible() []types.Window {
	all := m.Snapshot()
	visible := all[:0]
	for _, win := range all {
		if !win.IsMinimized {
			visible = append(visible, win)
		}
	}
	return visible
}

// Taskbar returns every window in creation order
func (m *Manager) Taskbar() []types.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked()
}

// Stats returns manager statistics
func (m *Manager) Stats() types.WindowStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := types.WindowStats{Tracked: len(m.windows)}
	var focused *types.Window
	for _, win := range m.windows {
		switch {
		case win.IsClosing:
			stats.Closing++
		case win.IsMinimized:
			stats.Minimized++
		default:
			stats.Visible++
			if focused == nil || win.ZIndex > focused.ZIndex {
				focused = win
			}
		}
	}
	if focused != nil {
		id := focused.ID
		stats.FocusedID = &id
	}
	return stats
}

// findLiveLocked returns the first non-closing window of appID (must hold lock)
func (m *Manager) findLiveLocked(appID string) *types.Window {
	for _, id := range m.order {
		if win := m.windows[id]; win.AppID == appID && !win.IsClosing {
			return win
		}
	}
	return nil
}

// raiseLocked assigns the next z-index (must hold lock)
func (m *Manager) raiseLocked(win *types.Window, kind types.ChangeKind) types.WindowChange {
	win.ZIndex = m.nextZ
	m.nextZ++
	return m.changeLocked(kind, win)
}

// removeLocked deletes a window (must hold lock)
func (m *Manager) removeLocked(id int) (types.WindowChange, bool) {
	win, ok := m.windows[id]
	if !ok {
		return types.WindowChange{}, false
	}
	delete(m.windows, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return m.changeLocked(types.ChangeRemoved, win), true
}

func (m *Manager) changeLocked(kind types.ChangeKind, win *types.Window) types.WindowChange {
	return types.WindowChange{
		Kind:      kind,
		WindowID:  win.ID,
		AppID:     win.AppID,
		Remaining: len(m.windows),
	}
}

func (m *Manager) copyLocked() []types.Window {
	out := make([]types.Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.windows[id])
	}
	return out
}

func (m *Manager) cue(cue types.Cue) {
	if m.cues != nil {
		m.cues.Notify(cue)
	}
}

// publish delivers changes outside the window lock so listeners may call
// back into the manager
func (m *Manager) publish(changes ...types.WindowChange) {
	if len(changes) == 0 {
		return
	}

	m.listenersMu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.listenersMu.RUnlock()

	for _, change := range changes {
		if m.metrics != nil {
			m.metrics.RecordWindowEvent(string(change.Kind), change.AppID)
			m.metrics.SetWindowsTracked(change.Remaining)
		}
		for _, l := range listeners {
			l(change)
		}
	}
}
