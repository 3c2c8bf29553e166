// Package upstream wraps the HTTP calls made to third-party weather and
// geocoding providers with a circuit breaker and metrics.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/observability"
)

const maxBodyBytes = 8 << 20

var (
	// ErrStatus is returned for any non-2xx response.
	ErrStatus = errors.New("unexpected status code")
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrDecode is returned when the response body is not the expected JSON.
	ErrDecode = errors.New("invalid response body")
)

// Client performs JSON GET requests against a single upstream.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request counts and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client named after its upstream. The timeout bounds every call.
func New(name string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("upstream", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return c.name
}

// GetJSON issues GET endpoint?params and decodes the JSON body into dest.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, dest any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, u.String())
	})
	c.observeDuration(time.Since(start))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.observe("rejected")
			return fmt.Errorf("%s: %w: %v", c.name, ErrCircuitOpen, err)
		}
		c.observe("error")
		return fmt.Errorf("%s: %w", c.name, err)
	}

	body, ok := result.([]byte)
	if !ok {
		c.observe("error")
		return fmt.Errorf("%s: unexpected result type from circuit breaker", c.name)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.observe("error")
		return fmt.Errorf("%s: %w: %v", c.name, ErrDecode, err)
	}

	c.observe("success")
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func (c *Client) observe(outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequests.WithLabelValues(c.name, outcome).Inc()
}

func (c *Client) observeDuration(d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamDuration.WithLabelValues(c.name).Observe(d.Seconds())
}
