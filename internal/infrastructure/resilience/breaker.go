package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// MaxRequests is the maximum number of requests allowed in half-open state
	MaxRequests uint32
	// Interval is the cyclic period of the closed state to clear internal counts
	Interval time.Duration
	// Timeout is the period of the open state until transitioning to half-open
	Timeout time.Duration
	// ReadyToTrip is called with counts when a request fails in closed state
	ReadyToTrip func(counts Counts) bool
	// IsSuccessful classifies a request error. Defaults to treating nil and
	// caller cancellation as success.
	IsSuccessful func(err error) bool
	// OnStateChange is called whenever the state changes, outside the lock
	OnStateChange func(name string, from State, to State)
	// Clock drives expiry. Defaults to the system clock.
	Clock clock.Clock
}

// Counts holds the statistics for the circuit breaker
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

type transition struct {
	from, to State
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}
	if settings.Interval == 0 {
		settings.Interval = 60 * time.Second
	}
	if settings.Timeout == 0 {
		settings.Timeout = 60 * time.Second
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures > 5
		}
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = defaultIsSuccessful
	}
	if settings.Clock == nil {
		settings.Clock = clock.System()
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		expiry:   settings.Clock.Now().Add(settings.Interval),
	}
}

// defaultIsSuccessful does not blame the upstream for a caller giving up
func defaultIsSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	state, _, tr := b.currentState(b.settings.Clock.Now())
	b.mu.Unlock()

	b.notify(tr)
	return state
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Execute runs the given request if the circuit breaker accepts it
func (b *Breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	return Do(b, req)
}

// Do runs req through the breaker and keeps the result typed
func Do[T any](b *Breaker, req func() (T, error)) (T, error) {
	var zero T

	generation, err := b.beforeRequest()
	if err != nil {
		return zero, err
	}

	defer func() {
		if e := recover(); e != nil {
			b.afterRequest(generation, false)
			panic(e)
		}
	}()

	result, err := req()
	b.afterRequest(generation, b.settings.IsSuccessful(err))
	return result, err
}

// Run is Do for requests that only return an error
func (b *Breaker) Run(req func() error) error {
	_, err := Do(b, func() (struct{}, error) {
		return struct{}{}, req()
	})
	return err
}

func (b *Breaker) beforeRequest() (uint64, error) {
	b.mu.Lock()
	state, generation, tr := b.currentState(b.settings.Clock.Now())

	var err error
	switch {
	case state == StateOpen:
		err = ErrCircuitOpen
	case state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		err = ErrTooManyRequests
	default:
		b.counts.Requests++
	}
	b.mu.Unlock()

	b.notify(tr)
	return generation, err
}

func (b *Breaker) afterRequest(before uint64, success bool) {
	b.mu.Lock()
	now := b.settings.Clock.Now()
	state, generation, tr := b.currentState(now)

	var outcome *transition
	if generation == before {
		if success {
			outcome = b.onSuccess(state, now)
		} else {
			outcome = b.onFailure(state, now)
		}
	}
	b.mu.Unlock()

	b.notify(tr)
	b.notify(outcome)
}

func (b *Breaker) onSuccess(state State, now time.Time) *transition {
	b.counts.TotalSuccesses++
	b.counts.ConsecutiveSuccesses++
	b.counts.ConsecutiveFailures = 0

	if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
		return b.setState(StateClosed, now)
	}
	return nil
}

func (b *Breaker) onFailure(state State, now time.Time) *transition {
	switch state {
	case StateClosed:
		b.counts.TotalFailures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.settings.ReadyToTrip(b.counts) {
			return b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		return b.setState(StateOpen, now)
	}
	return nil
}

// currentState must be called with mu held
func (b *Breaker) currentState(now time.Time) (State, uint64, *transition) {
	var tr *transition

	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.newGeneration(now)
		}
	case StateOpen:
		if !b.expiry.After(now) {
			tr = b.setState(StateHalfOpen, now)
		}
	}

	return b.state, b.generation, tr
}

// setState must be called with mu held
func (b *Breaker) setState(state State, now time.Time) *transition {
	if b.state == state {
		return nil
	}

	prev := b.state
	b.state = state
	b.newGeneration(now)

	return &transition{from: prev, to: state}
}

func (b *Breaker) newGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.expiry = now.Add(b.settings.Interval)
	case StateOpen:
		b.expiry = now.Add(b.settings.Timeout)
	default:
		b.expiry = time.Time{}
	}
}

func (b *Breaker) notify(tr *transition) {
	if tr != nil && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, tr.from, tr.to)
	}
}
