package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/id"
	"go.uber.org/zap"
)

// Header carries the request id over HTTP
const Header = "X-Request-ID"

const spanBuffer = 1000

// Span is one traced operation
type Span struct {
	RequestID string
	Name      string
	StartTime time.Time
	Duration  time.Duration
	Tags      map[string]string
	Status    int
	Err       error
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// Finish stamps the span duration
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// Tracer collects finished spans
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// New creates a tracer and starts its collector
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.collect()
	return t
}

// StartSpan opens a span, reusing the request id already in ctx if any
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	reqID := RequestID(ctx)
	if reqID == "" {
		reqID = id.NewRequestID()
		ctx = WithRequestID(ctx, reqID)
	}
	return &Span{
		RequestID: reqID,
		Name:      name,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}, ctx
}

// Submit hands a finished span to the collector without blocking
func (t *Tracer) Submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}

	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("request_id", span.RequestID),
			zap.String("operation", span.Name))
	}
}

// Close drains pending spans and stops the collector
func (t *Tracer) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.spans)
		t.mu.Unlock()
		<-t.done
	})
}

func (t *Tracer) collect() {
	defer close(t.done)
	for span := range t.spans {
		t.log(span)
	}
}

func (t *Tracer) log(span *Span) {
	fields := []zap.Field{
		zap.String("service", t.service),
		zap.String("request_id", span.RequestID),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.Int("status", span.Status),
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		t.logger.Warn("span completed with error", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type contextKey struct{}

// WithRequestID stores a request id in ctx
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, contextKey{}, reqID)
}

// RequestID returns the request id stored in ctx, or ""
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(contextKey{}).(string)
	return reqID
}
