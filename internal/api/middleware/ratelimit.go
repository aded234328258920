package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"ChartEmbed/internal/api/handlers"
	"ChartEmbed/internal/metrics"
)

const defaultMaxClients = 10000

// RateLimiter limits requests per client with a token bucket per client IP.
// Client buckets live in a bounded LRU; the least recently seen client is
// forgotten first.
type RateLimiter struct {
	clients *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
	window  time.Duration
	mu      sync.Mutex
}

// NewRateLimiter creates a new rate limiter
// requests: maximum number of requests allowed per window
// window: time window duration (e.g., 1 minute)
// maxClients: number of clients tracked at once (0 selects a default)
func NewRateLimiter(requests int, window time.Duration, maxClients int) *RateLimiter {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}

	clients, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		slog.Warn("[RATE-LIMIT] failed to create client cache, using default size", "error", err)
		clients, _ = lru.New[string, *rate.Limiter](defaultMaxClients)
	}

	return &RateLimiter{
		clients: clients,
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		window:  window,
	}
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(getClientIP(r)) {
			metrics.RateLimitedRequests.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			handlers.WriteError(w, http.StatusTooManyRequests, "RateLimitExceeded", "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow reports whether the client may make a request now
func (rl *RateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	limiter, ok := rl.clients.Get(clientID)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients.Add(clientID, limiter)
	}
	rl.mu.Unlock()

	return limiter.Allow()
}

// getClientIP keys clients on the connection address. Proxy headers are
// only honoured through chi's RealIP middleware, which rewrites RemoteAddr
// before this runs.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
