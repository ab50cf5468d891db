package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SystemInstruction sets the assistant's persona
const SystemInstruction = "You are G-Assistant, a helpful AI integrated into Windows 6.1, a fictional operating system. Be helpful, concise, and slightly futuristic in your tone."

var (
	ErrUnavailable      = errors.New("assistant service unavailable")
	ErrStreamIncomplete = errors.New("reply stream ended before completion")
	ErrBlocked          = errors.New("reply blocked by the service")
	ErrMalformedEvent   = errors.New("malformed event")
)

// APIError is a non-success HTTP status from the service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Message)
}

// Is classifies throttling and server faults as ErrUnavailable
func (e *APIError) Is(target error) bool {
	return target == ErrUnavailable && (e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500)
}

// Observer records upstream call outcomes
type Observer interface {
	RecordServiceCall(service, method, status string, duration time.Duration)
}

// Config configures the client
type Config struct {
	APIKey            string
	Model             string
	Endpoint          string
	RequestsPerSecond float64
	SystemInstruction string
	Observer          Observer
	OnBreakerChange   func(name string, from, to resilience.State)
}

// Client streams replies from the Generative Language API
type Client struct {
	cfg     Config
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewClient creates a client with rate limiting and a circuit breaker
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = SystemInstruction
	}

	// Pooled transport only; a half-read stream cannot be replayed, so
	// retries stay off
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetTransport(retryClient.HTTPClient.Transport).
		SetRetryCount(0).
		SetHeader("User-Agent", "WebDesk-Assistant/1.0").
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	breaker := resilience.New("gemini", resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return !upstreamFault(err)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if cfg.OnBreakerChange != nil {
				cfg.OnBreakerChange(name, from, to)
			}
		},
	})

	return &Client{
		cfg:     cfg,
		resty:   restyClient,
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		logger:  logger,
	}
}

// Breaker exposes the circuit breaker guarding the service
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Stream sends prompt with the earlier conversation and yields reply text
// increments in order
func (c *Client) Stream(ctx context.Context, history []types.ChatMessage, prompt string, yield func(string) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	err := c.breaker.Run(func() error {
		return c.stream(ctx, history, prompt, yield)
	})
	c.observe(start, err)
	return err
}

func (c *Client) stream(ctx context.Context, history []types.ChatMessage, prompt string, yield func(string) error) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.cfg.APIKey).
		SetHeader("Accept", "text/event-stream").
		SetPathParam("model", c.cfg.Model).
		SetQueryParam("alt", "sse").
		SetBody(newRequest(c.cfg.SystemInstruction, history, prompt)).
		SetDoNotParseResponse(true).
		Post("/models/{model}:streamGenerateContent")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return newAPIError(resp.StatusCode(), body)
	}

	if err := readEvents(body, yield); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// upstreamFault reports errors that say the service is unhealthy. Blocked
// prompts, rejected requests and callers giving up do not trip the breaker.
func upstreamFault(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrStreamIncomplete),
		errors.Is(err, ErrMalformedEvent),
		errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}

func (c *Client) observe(start time.Time, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		status = "cancelled"
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		status = "rejected"
	default:
		status = "error"
	}
	if c.cfg.Observer != nil {
		c.cfg.Observer.RecordServiceCall("gemini", "stream", status, time.Since(start))
	}
	if status == "error" {
		c.logger.Debug("gemini stream failed", zap.Error(err))
	}
}

func newAPIError(status int, body io.Reader) error {
	data, _ := io.ReadAll(io.LimitReader(body, 8<<10))

	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := http.StatusText(status)
	if sonic.Unmarshal(data, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}
	return &APIError{StatusCode: status, Message: msg}
}
