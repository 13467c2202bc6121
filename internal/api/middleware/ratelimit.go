package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/metrics"
)

// Counter is a shared expiring counter store
type Counter interface {
	IncrementCounter(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// KeyFunc picks the identity a limit applies to
type KeyFunc func(r *http.Request) string

// ByIP keys requests by client address
func ByIP(r *http.Request) string {
	return ClientIP(r)
}

// ByUser keys requests by signed-in user, falling back to client address
func ByUser(r *http.Request) string {
	if u := GetUser(r.Context()); u != nil {
		return "user:" + string(u.ID)
	}
	return ClientIP(r)
}

// ClientIP returns the host part of the request's remote address
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WindowLimit allows Max requests per Window for each key
type WindowLimit struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
}

// RateLimit enforces a fixed-window limit through the counter store, so
// every instance sharing the store shares the limit. Counter failures let
// the request through.
func RateLimit(counter Counter, clk clock.Clock, limit WindowLimit, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	if limit.Message == "" {
		limit.Message = "Too many requests. Please try again later."
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := clk.Now()
			windowStart := now.Truncate(limit.Window)
			counterKey := "ratelimit:" + limit.Name + ":" + key(r) + ":" + strconv.FormatInt(windowStart.Unix(), 10)

			n, err := counter.IncrementCounter(r.Context(), counterKey, limit.Window)
			if err != nil {
				logger.Warn("rate limit counter unavailable",
					slog.String("limiter", limit.Name),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit.Max) - n
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(limit.Max))
			w.Header().Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(limit.Max) {
				retry := windowStart.Add(limit.Window).Sub(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				metrics.RecordRateLimited(limit.Name)
				logger.Warn("rate limit exceeded",
					slog.String("limiter", limit.Name),
					slog.String("path", r.URL.Path),
				)
				apierr.WriteError(w, apierr.NewRateLimitedError(limit.Message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type burstEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// BurstLimiter is a per-client token bucket guarding the whole API
// against request floods. State is local to the process.
type BurstLimiter struct {
	mu      sync.Mutex
	clients map[string]*burstEntry
	rate    rate.Limit
	burst   int
	clock   clock.Clock
}

// NewBurstLimiter allows rps requests per second per client with the given burst
func NewBurstLimiter(rps float64, burst int, clk clock.Clock) *BurstLimiter {
	return &BurstLimiter{
		clients: make(map[string]*burstEntry),
		rate:    rate.Limit(rps),
		burst:   burst,
		clock:   clk,
	}
}

// Allow reports whether key may make a request now
func (b *BurstLimiter) Allow(key string) bool {
	now := b.clock.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.clients[key]
	if !ok {
		entry = &burstEntry{limiter: rate.NewLimiter(b.rate, b.burst)}
		b.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Prune forgets clients idle for longer than idle and returns how many were removed
func (b *BurstLimiter) Prune(idle time.Duration) int {
	cutoff := b.clock.Now().Add(-idle)
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for key, entry := range b.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(b.clients, key)
			removed++
		}
	}
	return removed
}

// Handler rejects requests from clients that exceed their bucket
func (b *BurstLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !b.Allow(ClientIP(r)) {
			metrics.RecordRateLimited("burst")
			apierr.WriteError(w, apierr.NewRateLimitedError("Too many requests. Please slow down."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
