// Package apps provides the behavior behind application windows.
//
// The Host listens to the window manager and keeps one app instance per
// window, chosen by the registry entry's kind. Instances are created when a
// window opens and dropped when it is removed, which also cancels any chat
// reply still streaming into it.
//
// Apps:
//   - Notepad: a text buffer per window
//   - About: static system information plus live process figures
//   - Wallpaper: fixed background choices applied to the desktop
//   - Chat: a conversation with the assistant, streamed increment by increment
//
// Example Usage:
//
//	host := apps.NewHost(registry, apps.Options{Desktop: desktop, Streamer: client}, logger)
//	windows.Subscribe(host.HandleWindowChange)
//	if chat, ok := host.Chat(windowID); ok {
//	    chat.Send("What year is it?")
//	}
package apps
