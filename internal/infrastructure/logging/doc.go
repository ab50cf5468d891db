// Package logging provides structured logging using uber/zap.
//
// Two output modes:
//   - Production: sampled JSON with "component" and "service" fields
//   - Development: Colored console output for human readability
//
// The level is shared by every component logger and can be changed at
// runtime with SetLevel.
//
// Components receive a named child logger so every line carries the
// subsystem it came from (window, session, chat, sound, ws, http).
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	wmLog := logger.Component("window")
//	wmLog.Debug("window opened", zap.Int("window_id", 3))
package logging
