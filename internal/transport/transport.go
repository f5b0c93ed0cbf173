// Package transport provides the HTTP capability the directory clients
// consume: send a request, get back a status code and body. Callers never
// see transport internals beyond that.
//
// The production client wraps net/http with a rate limiter and a circuit
// breaker; tests use the Recorder double from this package instead.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Request describes one HTTP call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte

	// Timeout bounds the whole round trip. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Response carries the only two things the core ever inspects.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is in the 2xx family.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Sender is the transport capability. Send returns an error only for
// network-level failures; a non-2xx response comes back as a Response.
type Sender interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// DefaultTimeout bounds calls that set no explicit timeout.
const DefaultTimeout = 15 * time.Second

// Options configures the production client.
type Options struct {
	// RequestsPerSecond throttles remote calls. Zero disables
	// throttling. The remote API is fragile under bursts, so batch
	// operations are expected to run with a limiter.
	RequestsPerSecond float64

	// BreakerName labels the circuit breaker in logs.
	BreakerName string

	// MaxConsecutiveFailures trips the breaker. Zero defaults to 5.
	MaxConsecutiveFailures uint32

	// BreakerCooldown is how long the breaker stays open. Zero
	// defaults to 30s.
	BreakerCooldown time.Duration
}

// Client is the production Sender over net/http.
//
// Network failures feed the circuit breaker; HTTP error statuses do not,
// because the remote API routinely answers 4xx/5xx during its eventually
// consistent windows and tripping on those would starve the retry loops
// that are designed to ride them out.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// NewClient creates a Client with the given options.
func NewClient(opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	maxFailures := opts.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown == 0 {
		cooldown = 30 * time.Second
	}
	name := opts.BreakerName
	if name == "" {
		name = "remote-directory"
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		http:    &http.Client{},
		limiter: limiter,
		breaker: breaker,
		log:     log,
	}
}

// Send issues the request and returns status code and body.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, err
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.roundTrip(ctx, req)
	})
	if err != nil {
		return Response{}, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	return result.(Response), nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) (Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Response{}, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: resp.StatusCode, Body: data}, nil
}
