package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultAcceptLanguage = "en-GB,en;q=0.9"
	DefaultRetries        = 3
	DefaultBackoff        = 1.4
	DefaultTimeout        = 20 * time.Second
)

// Config controls the retry budget and request shape
type Config struct {
	Retries        int
	Backoff        float64
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
}

// DefaultConfig returns the settings tuned for the list article host
func DefaultConfig() Config {
	return Config{
		Retries:        DefaultRetries,
		Backoff:        DefaultBackoff,
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
	}
}

// TransportError is returned once every attempt for a URL has failed
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a response outside the 2xx range
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithSleeper replaces the wait between attempts
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) {
		f.sleep = s
	}
}

// WithJitter replaces the jitter source. j must return a value in [0, 1).
func WithJitter(j func() float64) Option {
	return func(f *Fetcher) {
		f.jitter = j
	}
}

// WithMetrics records retry counts on m
func WithMetrics(m *logger.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// Fetcher retrieves documents with retry and backoff
type Fetcher struct {
	cfg     Config
	log     logger.Logger
	metrics *logger.Metrics
	sleep   Sleeper
	jitter  func() float64
}

// New creates a Fetcher. Zero-valued config fields fall back to DefaultConfig.
func New(cfg Config, log logger.Logger, opts ...Option) *Fetcher {
	def := DefaultConfig()
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = def.AcceptLanguage
	}
	if log == nil {
		log = logger.Nop()
	}

	f := &Fetcher{
		cfg:    cfg,
		log:    log,
		sleep:  Sleep,
		jitter: rand.Float64,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of url, retrying transport failures up to the configured budget
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.Retries; attempt++ {
		body, err := f.get(url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		wait := f.Backoff(attempt)
		f.log.Info("Fetch failed", logger.Fields{
			"attempt": attempt,
			"url":     url,
			"error":   err.Error(),
			"wait":    wait.Round(100 * time.Millisecond).String(),
		})
		if f.metrics != nil {
			f.metrics.IncrCounter("fetch.failed_attempts")
		}

		if err := f.sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("fetching %s: %w", url, err)
		}
	}
	return "", &TransportError{URL: url, Attempts: f.cfg.Retries, Err: lastErr}
}

// Backoff returns the wait after the given failed attempt: backoff^attempt
// seconds plus jitter in [0, 1) seconds.
func (f *Fetcher) Backoff(attempt int) time.Duration {
	seconds := math.Pow(f.cfg.Backoff, float64(attempt)) + f.jitter()
	return time.Duration(seconds * float64(time.Second))
}

// get performs a single attempt
func (f *Fetcher) get(url string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.cfg.Timeout)
	c.ParseHTTPErrorResponse = true

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
	})

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		return "", err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", &StatusError{StatusCode: status}
	}
	return string(body), nil
}

// Sleep waits for d, returning early with the context error if ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTransport reports whether err came from an exhausted retry budget
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
