/*
Package resilience provides a circuit breaker for calls that leave the process.

# Overview

The desktop backend talks to exactly one remote service, the generative
language API behind the G-Assistant window. When that service misbehaves the
breaker fails chat requests fast instead of stacking up slow streams, and the
chat window shows its usual apology text.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Typed execution through the generic Do helper
- Caller cancellation is not counted against the upstream
- Injectable clock so expiry can be driven in tests
- State change callbacks for monitoring, invoked outside the lock

# Usage

	breaker := resilience.New("gemini", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Info("breaker state", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	err := breaker.Run(func() error {
		return client.Stream(ctx, history, prompt, yield)
	})

# Pattern

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
