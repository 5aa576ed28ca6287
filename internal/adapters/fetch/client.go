package fetch

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_reputation/internal/adapters/observability"
	"hotel_reputation/internal/domain"
)

const (
	maxAttempts = 4
	maxBody     = 8 << 20

	defaultUserAgent = "Mozilla/5.0 (compatible; ReputationBot/1.0)"
)

var (
	ErrNotFound     = fmt.Errorf("fetch: %w", domain.ErrNotFound)
	ErrUnauthorized = errors.New("fetch: unauthorized")
	ErrForbidden    = errors.New("fetch: forbidden")
)

// Client fetches review pages and API documents. It owns the per-request timeout,
// the client-side rate limit and the retry policy.
type Client struct {
	hc *http.Client
	rl *rate.Limiter
	ua string
}

func New(rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 2
	}
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Client{
		hc: &http.Client{Timeout: timeout},
		rl: rate.NewLimiter(rate.Limit(rps), rps),
		ua: defaultUserAgent,
	}
}

// Fetch performs one request and returns the body as text.
// Retries on network errors, 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) Fetch(ctx context.Context, r domain.FetchRequest) (string, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	service := hostOf(r.URL)

	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		// build a fresh request each attempt
		var body io.Reader
		if r.Body != "" {
			body = strings.NewReader(r.Body)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", c.ua)
		req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
		if r.Body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range r.Headers {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, 0, time.Since(start))
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", lastErr
		}
		observability.ObserveExternal(service, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNonAuthoritativeInfo:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			resp.Body.Close()
			if err != nil {
				return "", err
			}
			return string(b), nil

		case http.StatusNoContent:
			resp.Body.Close()
			return "", nil

		case http.StatusNotFound, http.StatusGone:
			resp.Body.Close()
			return "", ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return "", ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return "", ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return "", lastErr
}

// FetchFirst tries each request in order and moves on only when the previous one was
// not found. Any other error stops the walk.
func (c *Client) FetchFirst(ctx context.Context, reqs []domain.FetchRequest) (string, error) {
	var last error
	for _, r := range reqs {
		body, err := c.Fetch(ctx, r)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				last = err
				continue
			}
			return "", err
		}
		return body, nil
	}
	if last != nil {
		return "", last
	}
	return "", errors.New("fetch: no request to try")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
