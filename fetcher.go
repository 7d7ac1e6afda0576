package insider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	VERSION = "0.1.0"

	// DefaultRequestsPerSecond matches the SEC fair-access limit of 10
	// requests per second.
	DefaultRequestsPerSecond = 10

	// SecEmailEnvVar is the environment variable name for SEC email
	SecEmailEnvVar = "SEC_EMAIL"
)

// GetSecEmail retrieves email from environment variable or returns error
func GetSecEmail() (string, error) {
	email := os.Getenv(SecEmailEnvVar)
	if email == "" {
		return "", fmt.Errorf("SEC email required: set %s environment variable or use --email flag", SecEmailEnvVar)
	}

	// Basic email validation
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return "", fmt.Errorf("invalid email format: %s", email)
	}
	if strings.HasSuffix(email, "example.com") {
		return "", fmt.Errorf("use a real email address, not example.com: %s", email)
	}
	return email, nil
}

// BuildUserAgent creates a proper SEC User-Agent string
func BuildUserAgent(email string) string {
	return fmt.Sprintf("go-insider/%s (%s)", VERSION, email)
}

// StatusError reports a non-2xx response from the archive.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Code)
}

// isRetryableStatus reports whether an HTTP status is worth another attempt.
// Rate limiting and server errors are transient; other 4xx codes won't change.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500
}

// FetcherOptions configures a Fetcher. Zero values fall back to defaults.
type FetcherOptions struct {
	Timeout           time.Duration // per-request deadline, default 30s
	MaxRetries        int           // additional attempts after the first, default 2
	RequestsPerSecond float64       // shared rate limit, default 10
	BackoffBase       time.Duration // first retry delay, default 1s
	Logger            zerolog.Logger
}

// Fetcher issues GET requests against the filings archive with the required
// header set, a shared rate limit, and bounded retry for transient failures.
// Safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	headers     map[string]string
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	log         zerolog.Logger
}

// NewFetcher builds a Fetcher that attaches headers to every request.
func NewFetcher(headers map[string]string, opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 2
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers:     headers,
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		log:         opts.Logger,
	}
}

// Get fetches url and returns the response body. Transient failures (network
// errors, 429, 5xx) are retried with exponential backoff; anything else is
// returned immediately. A fetch failure is fatal only to the filing being
// processed, never to the whole crawl.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoffDelay(attempt)
			f.log.Debug().
				Str("url", url).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("retrying fetch")
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !isRetryableStatus(statusErr.Code) {
			break
		}
	}

	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// backoffDelay returns the delay before the given retry attempt, doubling
// each time with a little jitter to avoid lockstep retries.
func (f *Fetcher) backoffDelay(attempt int) time.Duration {
	delay := float64(f.backoffBase) * math.Pow(2, float64(attempt-1))
	jitter := delay * 0.1
	delay += (rand.Float64() * 2 * jitter) - jitter
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
