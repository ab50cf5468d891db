// Package grpc serves the standard grpc.health.v1 service for the desktop.
//
// Orchestrators probe it the same way they probe any gRPC workload. The
// overall status ("") and the named service follow the session phase:
// SERVING while booting or running, NOT_SERVING from the moment shutdown
// begins.
//
// Example Usage:
//
//	srv := grpc.NewHealthServer(tracer, logger)
//	srv.Track(desktop.Session)
//	go srv.Serve(listener)
//	defer srv.Stop()
package grpc
