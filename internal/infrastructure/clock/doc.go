// Package clock provides the time source for the desktop session.
//
// Everything that depends on "now" or on a fixed delay (the boot sequence,
// the shutdown settle and fallback timers, the taskbar clock) goes through
// the Clock interface so tests can drive time by hand.
//
// Implementations:
//   - System: wall clock backed by the time package
//   - Manual: deterministic clock advanced explicitly by tests
//
// Example Usage:
//
//	c := clock.System()
//	timer := c.AfterFunc(3*time.Second, func() { ... })
//	defer timer.Stop()
//
//	reading := clock.Read(c, time.Local)
//	fmt.Println(reading.Time, reading.Date)
package clock
