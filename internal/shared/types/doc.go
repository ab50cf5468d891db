// Package types provides shared data structures for the desktop backend.
//
// This package defines the types exchanged between the domain packages and
// the HTTP / WebSocket presentation layer.
//
// Core Types:
//   - Window: One open application window with geometry and lifecycle flags
//   - Descriptor: Immutable application registry entry
//   - Phase: Coarse session lifecycle stage
//   - Cue: Sound cue emitted on lifecycle events
//   - DesktopSnapshot: Everything the browser needs to render one frame
//
// Request Types:
//   - OpenRequest, MoveRequest: Window intents
//   - WSMessage: WebSocket communication
//
// Example Usage:
//
//	win := types.Window{
//	    ID:     3,
//	    AppID:  "notepad",
//	    Title:  "Notepad",
//	    Size:   types.Size{Width: 500, Height: 400},
//	    ZIndex: 14,
//	}
package types
