package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"

	"jobradar/internal/model"
)

// Realistic desktop browser identities, rotated per request so a burst of
// fetches does not present a single fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

func randomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// hostLimiter rate-limits per hostname so every adapter sharing the client
// observes the same per-origin floor.
type hostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
}

func newHostLimiter(minGap time.Duration) *hostLimiter {
	r := rate.Inf
	if minGap > 0 {
		r = rate.Every(minGap)
	}
	return &hostLimiter{m: make(map[string]*rate.Limiter), r: r}
}

func (hl *hostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, 1)
	hl.m[host] = lim
	return lim
}

func (hl *hostLimiter) waitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}

// Client is the HTTP discipline every request-backed adapter shares:
// rotating user agents, a jittered inter-request delay, a per-origin rate
// floor, bounded retry with exponential backoff on transient statuses, and
// an advisory robots.txt check cached per origin.
type Client struct {
	http          *http.Client
	baseDelay     time.Duration
	maxRetries    int
	respectRobots bool
	limiter       *hostLimiter
	logger        *slog.Logger

	robotsMu sync.Mutex
	robots   map[string]*robotstxt.RobotsData // nil entry = permissive
}

// NewClient builds the shared client. baseDelay is multiplied by a random
// jitter factor in [0.5, 1.5) before every request.
func NewClient(baseDelay time.Duration, maxRetries int, respectRobots bool, logger *slog.Logger) *Client {
	return &Client{
		http:          &http.Client{Timeout: 20 * time.Second},
		baseDelay:     baseDelay,
		maxRetries:    maxRetries,
		respectRobots: respectRobots,
		limiter:       newHostLimiter(baseDelay / 2),
		logger:        logger,
		robots:        make(map[string]*robotstxt.RobotsData),
	}
}

// Get fetches rawURL with the full safety discipline and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if !c.allowed(ctx, rawURL) {
		return nil, fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt, lastErr)
			c.logger.Warn("retrying after transient error",
				"url", rawURL,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := c.pause(ctx, rawURL); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// pause applies the jittered inter-request delay, then the per-origin floor.
func (c *Client) pause(ctx context.Context, rawURL string) error {
	if c.baseDelay > 0 {
		jitter := 0.5 + rand.Float64() // [0.5, 1.5)
		delay := time.Duration(float64(c.baseDelay) * jitter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return c.limiter.waitURL(ctx, rawURL)
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration from the server takes precedence.
func (c *Client) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := c.baseDelay
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable reports whether the error is a transient failure worth another
// attempt: 429 and 5xx statuses, and non-HTTP network errors.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return true
}

// allowed consults the cached robots.txt for the URL's origin. Advisory
// only: a robots.txt that cannot be fetched defaults to permissive.
func (c *Client) allowed(ctx context.Context, rawURL string) bool {
	if !c.respectRobots {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	origin := u.Scheme + "://" + u.Host

	c.robotsMu.Lock()
	data, cached := c.robots[origin]
	c.robotsMu.Unlock()

	if !cached {
		data = c.fetchRobots(ctx, origin)
		c.robotsMu.Lock()
		c.robots[origin] = data
		c.robotsMu.Unlock()
	}

	if data == nil {
		return true
	}
	return data.FindGroup("jobradar").Test(u.Path)
}

// fetchRobots retrieves and parses origin/robots.txt, bypassing the pacing
// machinery (a robots probe must not consume the origin's request budget).
func (c *Client) fetchRobots(ctx context.Context, origin string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", randomUserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("robots.txt fetch failed, assuming permissive", "origin", origin, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or
// unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Close releases pooled connections. Called once on shutdown after every
// adapter is done.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
