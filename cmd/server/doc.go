// Package main is the entry point for the WebDesk backend.
//
// The server hosts a simulated desktop session for browsers: windows,
// the boot and shutdown sequence, per-window apps and the assistant chat.
//
// Configuration:
//   - Environment variables (12-factor)
//   - An optional TOML file (--config) overlaid on the environment
//   - CLI flags for the common overrides (--port, --dev)
//
// Usage:
//
//	# Production mode
//	./webdesk serve --port 8000
//
//	# Development mode (colored logs, debug level)
//	./webdesk --dev
//
//	# Inspect the app catalog
//	./webdesk apps
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
