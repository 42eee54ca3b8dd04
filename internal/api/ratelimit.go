// Rate limiting for the mutating control-plane endpoints. One limiter
// carries every route's budget; windows are tracked per route and client.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Limit is a per-route request budget.
type Limit struct {
	Rate   int
	Window time.Duration
}

// RateLimiter enforces sliding-window budgets keyed by route and client.
// Routes without a configured limit pass everything through.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	windows map[string]*requestWindow
}

type requestWindow struct {
	count   int
	started time.Time
	limit   Limit
}

// NewRateLimiter creates an empty limiter and starts its stale-window
// sweeper.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		limits:  make(map[string]Limit),
		windows: make(map[string]*requestWindow),
	}
	go func() {
		for {
			time.Sleep(time.Hour)
			rl.sweep()
		}
	}()
	return rl
}

// SetLimit configures the budget for a route.
func (rl *RateLimiter) SetLimit(route string, rate int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limits[route] = Limit{Rate: rate, Window: window}
}

// Allow reports whether the client is within the route's budget and
// consumes one request when it is.
func (rl *RateLimiter) Allow(route, client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limits[route]
	if !ok {
		return true
	}

	key := route + "|" + client
	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.started) >= lim.Window {
		rl.windows[key] = &requestWindow{count: 1, started: now, limit: lim}
		return true
	}
	if w.count < lim.Rate {
		w.count++
		return true
	}
	return false
}

// RetryAfter returns how many seconds until the client's window on the
// route resets.
func (rl *RateLimiter) RetryAfter(route, client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[route+"|"+client]
	if !ok {
		return 0
	}
	remaining := w.limit.Window - time.Since(w.started)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, w := range rl.windows {
		if now.Sub(w.started) > 2*w.limit.Window {
			delete(rl.windows, key)
		}
	}
}

// clientIP extracts the caller address, honoring X-Forwarded-For.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndexByte(ip, ':'); idx >= 0 {
		ip = ip[:idx]
	}
	return ip
}

// Limited wraps a handler with the route's budget. Returns 429 with a
// Retry-After header when the budget is exhausted.
func (rl *RateLimiter) Limited(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(route, ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(route, ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
