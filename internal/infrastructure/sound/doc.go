// Package sound delivers desktop sound cues.
//
// The Dispatcher is the fire-and-forget entry point the window manager and
// session controller call. It never blocks and silently drops cues while
// audio is locked (the browser has not seen a user gesture yet), disabled,
// or backed up. The Bank renders each cue once as a short WAV clip using
// beep so the browser can fetch and play it without synthesizing audio
// itself.
package sound
