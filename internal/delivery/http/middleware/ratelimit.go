package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	h "eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/metrics"
)

// DefaultLimiterIdleTTL is how long a client's bucket survives without requests before it is swept.
const DefaultLimiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter hands out one token bucket per client key and evicts buckets that go idle.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	trusted  []netip.Prefix
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a keyed limiter allowing rps requests per second with the given burst.
// Forwarding headers are honoured only when the direct peer falls inside trustedProxies.
// Call Stop to end the background sweep.
func NewRateLimiter(rps float64, burst int, trustedProxies []netip.Prefix) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  DefaultLimiterIdleTTL,
		trusted:  trustedProxies,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go rl.cleanup(rl.idleTTL)

	return rl
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Len reports how many client buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// Stop shuts down the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now().UnixNano()

	rl.mu.RLock()
	cl, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		cl.lastSeen.Store(now)
		return cl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Double-check after acquiring write lock
	if cl, ok = rl.limiters[key]; ok {
		cl.lastSeen.Store(now)
		return cl.limiter
	}
	cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	cl.lastSeen.Store(now)
	rl.limiters[key] = cl
	return cl.limiter
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops buckets idle for longer than idleTTL. An idle bucket has refilled,
// so recreating it later changes nothing for the client.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.idleTTL).UnixNano()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if cl.lastSeen.Load() < cutoff {
			delete(rl.limiters, key)
		}
	}
}

// RateLimit returns a wrapper that rejects requests over the per-client limit with 429.
func RateLimit(limiter *RateLimiter, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := limiter.clientIP(r)
			if !limiter.Allow(key) {
				metrics.RateLimitedTotal.Inc()
				logger.WarnContext(r.Context(), "rate limit exceeded", "ip", key, "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next(w, r)
		}
	}
}

// clientIP keys on the direct peer. Behind a trusted proxy it walks X-Forwarded-For
// from the right, skipping trusted hops, and falls back to X-Real-IP.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !rl.isTrusted(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !rl.isTrusted(hop) {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return peer
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	if len(rl.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
