/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

Every collector lives in a private registry owned by Metrics, so tests and
embedded servers can build as many instances as they like without colliding
on the default registerer.

# Features

- HTTP request metrics (latency, throughput, size), labelled by route template
- Window collection size and change counts
- Session phase gauge and transition counts
- Sound cue delivery and drop counts
- Assistant reply outcomes, durations and breaker state
- WebSocket connection metrics
- Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
