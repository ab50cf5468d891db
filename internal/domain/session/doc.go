// Package session provides the desktop session phase controller.
//
// A session moves through four phases and never goes back:
//
//	booting ──(boot + fade)──> running ──RequestShutdown──> shutdown_pending ──> shutdown_final
//
// Booting is purely timed. Shutdown asks the window manager to close every
// window and then waits for the collection to empty, followed by a short
// settle delay. The empty check is edge-triggered on window removal, so a
// shutdown requested with no windows open takes a fixed fallback path
// instead.
//
// Timers come from an injected clock and are cancelled by Close, which the
// server calls when it stops.
//
// Example Usage:
//
//	ctrl := session.NewController(windows, dispatcher, clock.System(), session.DefaultTimings(), logger)
//	ctrl.Start()
//	...
//	ctrl.RequestShutdown()
package session
