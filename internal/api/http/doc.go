// Package http exposes the desktop over a JSON HTTP API.
//
// Routes mirror what the browser shell does: read the desktop snapshot, send
// window intents, talk to the per-window apps, fetch cue audio. Intent
// handlers share app.Desktop.Apply with the WebSocket surface.
//
// Status conventions:
//   - 200 with success=false when a well-formed request changed nothing
//     (unknown window id, app not in the catalog, reply already in flight)
//   - 400 with {"error": ...} for malformed input
//   - 404 when reading app state for a window that does not host that app
//   - 409 when a user intent arrives outside the running phase; animation
//     confirmations are accepted in every phase
package http
