// internal/adapters/remote/client.go
package remote

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

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"aproz_tours/internal/adapters/observability"
	"aproz_tours/internal/domain"
)

// maxBody caps a static resource; the catalog and dictionary are a few KiB.
const maxBody = 4 << 20

// Client fetches static site resources (i18n/i18n.json, data/tours.json)
// relative to a base URL, bypassing HTTP caches on every request.
type Client struct {
	base *url.URL
	hc   *http.Client
	rl   *rate.Limiter
	now  func() time.Time
}

func New(base string, rps int) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", base)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: u,
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		now:  time.Now,
	}, nil
}

var (
	ErrUnauthorized = errors.New("remote: unauthorized")
	ErrForbidden    = errors.New("remote: forbidden")
)

var _ domain.Fetcher = (*Client)(nil)

// Fetch GETs name relative to the base URL. 404 maps to domain.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimLeft(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("resource name %q: %w", name, err)
	}
	u := c.base.ResolveReference(ref)
	q := u.Query()
	q.Set("_", strconv.FormatInt(c.now().UnixNano(), 36)) // cache busting
	u.RawQuery = q.Encode()

	start := time.Now()
	b, status, err := c.get(ctx, u.String())
	observability.ObserveExternal("assets", name, status, time.Since(start))
	if err != nil {
		log.Debug().Err(err).Str("resource", name).Int("status", status).
			Str("err_type", observability.LabelErr(err)).Msg("asset fetch failed")
	}
	return b, err
}

// get performs a GET with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var lastErr error
	var lastStatus int
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")
		req.Header.Set("Cache-Control", "no-store")
		req.Header.Set("User-Agent", "aproz-tours/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, 0, lastErr
		}
		lastStatus = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			resp.Body.Close()
			return b, resp.StatusCode, err

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, resp.StatusCode, domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, resp.StatusCode, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, resp.StatusCode, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, lastStatus, ctx.Err()
			}
			return nil, lastStatus, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, resp.StatusCode, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastStatus, lastErr
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
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
