// Package providers implements the external data sources used to enrich
// chat contexts: NASA open APIs, Solar System OpenData and Vietnamese Wikipedia.
package providers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/gcbaptista/space-chatbot/internal/errors"
)

const (
	DefaultTimeout    = 8 * time.Second
	DefaultMaxRetries = 2
	DefaultBackoff    = 500 * time.Millisecond

	maxBodyBytes = 2 << 20
	userAgent    = "space-chatbot/1.0 (+https://github.com/gcbaptista/space-chatbot)"
)

// FetcherConfig controls timeouts, retries and outbound throttling for one provider.
type FetcherConfig struct {
	Name              string
	Timeout           time.Duration
	MaxRetries        int
	Backoff           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// FailureObserver is notified of every failed provider call.
type FailureObserver func(provider string, err error)

// Fetcher performs JSON GET requests with per-attempt timeouts, linear
// backoff on 502/503/504, a circuit breaker and a token bucket.
type Fetcher struct {
	name       string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	onFailure  FailureObserver
	logger     *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithFetcherLogger sets the fetcher logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithFailureObserver registers a callback for failed calls, used for metrics.
func WithFailureObserver(observer FailureObserver) FetcherOption {
	return func(f *Fetcher) {
		f.onFailure = observer
	}
}

// NewFetcher creates a fetcher. Zero values fall back to the defaults; a
// non-positive RequestsPerSecond disables throttling.
func NewFetcher(cfg FetcherConfig, opts ...FetcherOption) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}

	f := &Fetcher{
		name:       cfg.Name,
		client:     &http.Client{},
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(slog.String("provider", cfg.Name))

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, errors.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("Circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return f
}

// Name returns the provider name.
func (f *Fetcher) Name() string {
	return f.name
}

// GetJSON fetches rawURL with query parameters and decodes the body into out.
// A 404 yields errors.ErrNotFound; other failures yield a *errors.ProviderError.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, query url.Values, headers map[string]string, out any) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return f.fail(errors.NewProviderError(f.name, 0, fmt.Errorf("throttled: %w", err)))
		}
	}

	target := rawURL
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	_, err := f.breaker.Execute(func() (interface{}, error) {
		return nil, f.getWithRetry(ctx, target, headers, out)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			err = errors.NewProviderError(f.name, 0, err)
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return f.fail(err)
		}
		return err
	}
	return nil
}

func (f *Fetcher) getWithRetry(ctx context.Context, target string, headers map[string]string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			wait := f.backoff * time.Duration(attempt)
			f.logger.Debug("Retrying provider request", slog.Int("attempt", attempt), slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return errors.NewProviderError(f.name, 0, ctx.Err())
			case <-time.After(wait):
			}
		}

		lastErr = f.get(ctx, target, headers, out)
		if lastErr == nil {
			return nil
		}
		var perr *errors.ProviderError
		if !stderrors.As(lastErr, &perr) || !perr.Retryable() {
			return lastErr
		}
	}
	return lastErr
}

func (f *Fetcher) get(ctx context.Context, target string, headers map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.NewProviderError(f.name, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.NewProviderError(f.name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", f.name, errors.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewProviderError(f.name, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return errors.NewProviderError(f.name, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (f *Fetcher) fail(err error) error {
	f.logger.Warn("Provider request failed", slog.Any("error", err))
	if f.onFailure != nil {
		f.onFailure(f.name, err)
	}
	return err
}
