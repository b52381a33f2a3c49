package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	// Max is the number of requests a client may make per Window.
	Max    int
	Window time.Duration
	// Key identifies the client. Defaults to ClientIP(false).
	Key func(*http.Request) string
	// Skip exempts matching requests, such as health checks.
	Skip func(*http.Request) bool
}

// clientWindow holds the counts of the current fixed window and the one
// before it.
type clientWindow struct {
	start     time.Time
	count     float64
	prevCount float64
}

// RateLimiter enforces a per-client sliding window limit. The sliding count
// is the current window's count plus the previous window's count weighted by
// how much of it the sliding window still covers.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow
}

// NewRateLimiter validates cfg and returns a limiter with no clients.
func NewRateLimiter(cfg RateLimitConfig) (*RateLimiter, error) {
	if cfg.Max <= 0 {
		return nil, errors.Errorf("rate limit max must be positive, got %d", cfg.Max)
	}
	if cfg.Window <= 0 {
		return nil, errors.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}
	if cfg.Key == nil {
		cfg.Key = ClientIP(false)
	}
	return &RateLimiter{
		cfg:     cfg,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}, nil
}

// take counts a request from key at now when it fits the limit. It returns
// whether the request is allowed, the requests left and the end of the
// current window.
func (l *RateLimiter) take(key string, now time.Time) (allowed bool, remaining int, reset time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	win := l.cfg.Window
	c, ok := l.clients[key]
	if !ok {
		c = &clientWindow{start: now.Truncate(win)}
		l.clients[key] = c
	}
	if elapsed := now.Sub(c.start); elapsed >= win {
		// Only the window directly before the current one counts.
		c.prevCount = 0
		if elapsed < 2*win {
			c.prevCount = c.count
		}
		c.count = 0
		c.start = now.Truncate(win)
	}

	covered := 1 - float64(now.Sub(c.start))/float64(win)
	used := c.prevCount*covered + c.count
	reset = c.start.Add(win)
	if used >= float64(l.cfg.Max) {
		return false, 0, reset
	}

	c.count++
	return true, max(int(float64(l.cfg.Max)-used-1), 0), reset
}

// evict drops clients that made no request in the last two windows and
// returns how many were dropped.
func (l *RateLimiter) evict(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for key, c := range l.clients {
		if now.Sub(c.start) >= 2*l.cfg.Window {
			delete(l.clients, key)
			n++
		}
	}
	return n
}

// Run evicts idle clients every two windows until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(2 * l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := l.evict(now); n > 0 {
				zctx.From(ctx).Debug("Evicted idle rate limit clients", zap.Int("count", n))
			}
		}
	}
}

// Middleware answers 429 with a Retry-After header once a client exceeds the
// limit. Every limited response carries X-RateLimit-Limit,
// X-RateLimit-Remaining and X-RateLimit-Reset.
func (l *RateLimiter) Middleware() Middleware {
	limit := strconv.Itoa(l.cfg.Max)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.cfg.Skip != nil && l.cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := l.cfg.Key(r)
			now := l.now()
			allowed, remaining, reset := l.take(key, now)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				retry := max(int(math.Ceil(reset.Sub(now).Seconds())), 0)
				h.Set("Retry-After", strconv.Itoa(retry))
				zctx.From(r.Context()).Debug("Rate limited", zap.String("client", key))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys requests by client address. With trustProxy set, the first
// X-Forwarded-For entry or X-Real-IP wins over the connection address; only
// enable it behind a proxy that overwrites those headers.
func ClientIP(trustProxy bool) func(*http.Request) string {
	return func(r *http.Request) string {
		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if first = strings.TrimSpace(first); first != "" {
					return first
				}
			}
			if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
				return xri
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}
