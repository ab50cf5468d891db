// Package app assembles the desktop domain into one runtime.
//
// A Desktop owns the window manager, the session controller, the shell
// chrome and the per-window app host, and subscribes them to each other.
// The HTTP and WebSocket layers drive it through Apply, which takes the same
// Intent values from both transports and enforces the session's input gate:
// user intents are refused outside the running phase, while animation
// confirmations (minimized, closed) are always accepted so a shutdown can
// finish.
//
// Example Usage:
//
//	desk := app.New(app.Options{Catalog: registry.MustDefault(), Cues: dispatcher}, logger)
//	desk.Start()
//	res, err := desk.Apply(app.Intent{Kind: app.IntentOpen, AppID: "notepad"})
package app
