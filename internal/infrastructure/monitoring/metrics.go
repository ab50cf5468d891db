package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window metrics
	WindowsTracked prometheus.Gauge
	WindowsOpened  *prometheus.CounterVec
	WindowEvents   *prometheus.CounterVec

	// Session metrics
	SessionPhase     prometheus.Gauge
	PhaseTransitions *prometheus.CounterVec

	// Sound metrics
	CuesEmitted *prometheus.CounterVec
	CuesDropped *prometheus.CounterVec

	// Chat metrics
	ChatRequests *prometheus.CounterVec
	ChatDuration prometheus.Histogram
	ChatChunks   prometheus.Counter
	BreakerState *prometheus.GaugeVec

	// Service metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON health endpoint
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveWindows     int64   `json:"active_windows"`
	ActiveConnections int64   `json:"active_connections"`
	CuesEmitted       int64   `json:"cues_emitted"`
	CuesDropped       int64   `json:"cues_dropped"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector backed by its own registry so
// several instances can coexist in one process.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Window metrics
		WindowsTracked: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_windows_tracked",
				Help: "Number of windows currently in the collection",
			},
		),
		WindowsOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_windows_opened_total",
				Help: "Total number of windows created, by app",
			},
			[]string{"app_id"},
		),
		WindowEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_window_events_total",
				Help: "Total number of window changes, by kind",
			},
			[]string{"kind"},
		),

		// Session metrics
		SessionPhase: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_session_phase",
				Help: "Current session phase (0 booting, 1 running, 2 shutdown pending, 3 shutdown final)",
			},
		),
		PhaseTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_session_phase_transitions_total",
				Help: "Total number of phase transitions, by target phase",
			},
			[]string{"phase"},
		),

		// Sound metrics
		CuesEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_sound_cues_total",
				Help: "Total number of sound cues delivered",
			},
			[]string{"cue"},
		),
		CuesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_sound_cues_dropped_total",
				Help: "Total number of sound cues dropped, by reason",
			},
			[]string{"reason"},
		),

		// Chat metrics
		ChatRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_chat_requests_total",
				Help: "Total number of assistant replies, by outcome",
			},
			[]string{"status"},
		),
		ChatDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "desktop_chat_duration_seconds",
				Help:    "Assistant reply duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		ChatChunks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_chat_chunks_total",
				Help: "Total number of streamed reply increments",
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "desktop_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		// Service metrics
		ServiceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_service_calls_total",
				Help: "Total number of service calls",
			},
			[]string{"service", "method", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_service_duration_seconds",
				Help:    "Service call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "method"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "desktop_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry holding every desktop metric
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordServiceCall records a service call
func (m *Metrics) RecordServiceCall(service, method, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, method, status).Inc()
	m.ServiceDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordWindowEvent counts a window change
func (m *Metrics) RecordWindowEvent(kind, appID string) {
	m.WindowEvents.WithLabelValues(kind).Inc()
	if kind == "opened" {
		m.WindowsOpened.WithLabelValues(appID).Inc()
	}
}

// SetWindowsTracked sets the number of windows in the collection
func (m *Metrics) SetWindowsTracked(count int) {
	m.WindowsTracked.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveWindows = int64(count)
	m.mu.Unlock()
}

// RecordPhase records a session phase transition
func (m *Metrics) RecordPhase(phase string, ordinal int) {
	m.SessionPhase.Set(float64(ordinal))
	m.PhaseTransitions.WithLabelValues(phase).Inc()
}

// RecordCue records a delivered sound cue
func (m *Metrics) RecordCue(cue string) {
	m.CuesEmitted.WithLabelValues(cue).Inc()
	m.mu.Lock()
	m.snapshot.CuesEmitted++
	m.mu.Unlock()
}

// RecordCueDropped records a cue that never reached a speaker
func (m *Metrics) RecordCueDropped(reason string) {
	m.CuesDropped.WithLabelValues(reason).Inc()
	m.mu.Lock()
	m.snapshot.CuesDropped++
	m.mu.Unlock()
}

// RecordChat records a finished assistant reply
func (m *Metrics) RecordChat(status string, duration time.Duration, chunks int) {
	m.ChatRequests.WithLabelValues(status).Inc()
	m.ChatDuration.Observe(duration.Seconds())
	m.ChatChunks.Add(float64(chunks))
}

// SetBreakerState publishes a breaker state ordinal
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON health endpoint
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	snap := m.snapshot
	m.mu.RUnlock()

	if snap.TotalRequests > 0 {
		snap.AvgLatencyMS = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
