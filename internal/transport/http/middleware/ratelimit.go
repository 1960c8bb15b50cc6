package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether another attempt is allowed for a source key.
// The in-process WindowLimiter below satisfies it for single-instance
// deployments; multi-instance deployments should inject an implementation
// backed by a shared counter store with TTL expiry.
type Limiter interface {
	Allow(key string) bool
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// WindowLimiter is a fixed-window counter per key: the first attempt in a
// window (or the first after the window lapses) resets the count; once count
// exceeds the limit, further attempts are rejected until resetAt passes.
type WindowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewWindowLimiter creates a limiter allowing limit attempts per window per key.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	wl := &WindowLimiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	go wl.cleanup()
	return wl
}

func (wl *WindowLimiter) Allow(key string) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	now := wl.now()
	e, ok := wl.entries[key]
	if !ok || now.After(e.resetAt) {
		wl.entries[key] = &windowEntry{count: 1, resetAt: now.Add(wl.window)}
		return true
	}
	e.count++
	return e.count <= wl.limit
}

// cleanup removes lapsed entries every 5 minutes so distinct-key churn does
// not grow the map without bound.
func (wl *WindowLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		wl.mu.Lock()
		now := wl.now()
		for key, e := range wl.entries {
			if now.After(e.resetAt) {
				delete(wl.entries, key)
			}
		}
		wl.mu.Unlock()
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token-bucket rate limiter with automatic
// stale-entry cleanup, for general public endpoints.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	r        rate.Limit
	burst    int
}

// NewRateLimiter creates a per-IP limiter: r requests/second, burst up to burst requests.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		r:        r,
		burst:    burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// cleanup removes stale entries every 5 minutes.
func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.limiters {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Limit is the middleware handler that enforces the rate limit per remote IP.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(RealIP(r)).Allow() {
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RealIP derives the rate-limit source key for a request: the first
// X-Forwarded-For hop, then X-Real-Ip, then the connection address. Requests
// with no attributable address share the "unknown" bucket.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
