package sound

import (
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// Drop reasons reported to the Observer
const (
	DropDisabled = "disabled"
	DropLocked   = "locked"
	DropFull     = "full"
	DropClosed   = "closed"
	DropUnknown  = "unknown"
)

// Sink receives delivered cues on the dispatcher goroutine
type Sink func(cue types.Cue)

// Observer records delivery outcomes
type Observer interface {
	RecordCue(cue string)
	RecordCueDropped(reason string)
}

// Options configures a Dispatcher
type Options struct {
	Enabled   bool
	QueueSize int
	Observer  Observer
}

// Dispatcher fans cues out to sinks without ever blocking the caller
type Dispatcher struct {
	logger   *zap.Logger
	observer Observer
	enabled  bool
	unlocked atomic.Bool

	mu     sync.RWMutex
	queue  chan types.Cue
	closed bool

	sinksMu sync.RWMutex
	sinks   []Sink

	done chan struct{}
}

// NewDispatcher starts a dispatcher with its delivery goroutine
func NewDispatcher(opts Options, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}

	d := &Dispatcher{
		logger:   logger,
		observer: opts.Observer,
		enabled:  opts.Enabled,
		queue:    make(chan types.Cue, opts.QueueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Subscribe registers a sink for delivered cues
func (d *Dispatcher) Subscribe(sink Sink) {
	d.sinksMu.Lock()
	defer d.sinksMu.Unlock()
	d.sinks = append(d.sinks, sink)
}

// Unlock enables delivery after the first user gesture. Idempotent.
func (d *Dispatcher) Unlock() {
	if d.unlocked.CompareAndSwap(false, true) {
		d.logger.Debug("audio unlocked")
	}
}

// Unlocked reports whether a user gesture has unlocked audio
func (d *Dispatcher) Unlocked() bool {
	return d.unlocked.Load()
}

// Enabled reports whether cues are delivered at all
func (d *Dispatcher) Enabled() bool {
	return d.enabled
}

// Notify queues cue for delivery. It never blocks.
func (d *Dispatcher) Notify(cue types.Cue) {
	switch {
	case !cue.Valid():
		d.drop(cue, DropUnknown)
		return
	case !d.enabled:
		d.drop(cue, DropDisabled)
		return
	case !d.unlocked.Load():
		d.drop(cue, DropLocked)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(cue, DropClosed)
		return
	}

	select {
	case d.queue <- cue:
	default:
		d.drop(cue, DropFull)
	}
}

// Close stops accepting cues and waits for queued ones to drain
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for cue := range d.queue {
		d.sinksMu.RLock()
		sinks := make([]Sink, len(d.sinks))
		copy(sinks, d.sinks)
		d.sinksMu.RUnlock()

		for _, sink := range sinks {
			sink(cue)
		}
		if d.observer != nil {
			d.observer.RecordCue(string(cue))
		}
	}
}

func (d *Dispatcher) drop(cue types.Cue, reason string) {
	if d.observer != nil {
		d.observer.RecordCueDropped(reason)
	}
	d.logger.Debug("cue dropped", zap.String("cue", string(cue)), zap.String("reason", reason))
}
