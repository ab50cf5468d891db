// Package window provides the desktop window manager.
//
// The Manager owns every open window: identity, position, size, stacking
// order and the two-phase minimize and close lifecycles. It is the only
// mutation surface for windows; the browser drives it with user intents and
// with confirmations once its own animations finish.
//
// Key Components:
//   - Manager: Serialized window collection with monotonic ids and z-order
//   - Listener: Change notifications delivered after the lock is released
//   - Stats: Counts of visible, minimized and closing windows
//
// Lifecycle:
//
//	Open ──> visible ──RequestMinimize──> minimizing ──ConfirmMinimized──> minimized
//	            ^                                                          │
//	            └──────────────────────────Restore─────────────────────────┘
//	visible ──RequestClose──> closing ──ConfirmClosed──> removed
//
// Unknown window ids are silent no-ops everywhere. Operations report whether
// they changed anything so transports can echo a success flag.
//
// Example Usage:
//
//	manager := window.NewManager(registry, dispatcher, logger)
//	win, ok := manager.Open("notepad")
//	manager.RequestClose(win.ID)
//	manager.ConfirmClosed(win.ID) // after the close animation
package window
