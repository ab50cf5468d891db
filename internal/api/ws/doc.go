// Package ws pushes desktop state to browsers over WebSocket and accepts
// the same intents as the HTTP API.
//
// Message Types (Server → Client):
//   - welcome: connection accepted, carries the client id
//   - snapshot: full desktop snapshot after any window or shell change
//   - phase: session phase change
//   - cue: a sound cue the browser should play
//   - clock: taskbar clock reading, once per tick
//   - chat: conversation update for one chat window
//   - result: outcome of an intent sent by this client
//   - pong, audio_unlocked, error
//
// Message Types (Client → Server):
//   - ping, snapshot, unlock_audio
//   - open, focus, move, minimize, minimized, restore, close, closed,
//     toggle_start_menu, shutdown
//   - chat: send a message from a chat window
//
// Broadcasts never block domain code: frames are encoded once with sonic
// and queued per client. A client whose queue is full is disconnected.
//
// Example Usage:
//
//	hub := ws.NewHub(desktop, ws.Options{Audio: dispatcher}, logger)
//	dispatcher.Subscribe(hub.PublishCue)
//	go hub.Run(ctx)
//	router.GET("/stream", hub.HandleConnection)
package ws
