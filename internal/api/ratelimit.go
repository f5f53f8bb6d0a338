package api

import (
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ipLimiter holds one token bucket per client IP. Buckets expire after an
// idle period so the map does not grow with every address ever seen.
type ipLimiter struct {
	buckets *cache.Cache
	rps     rate.Limit
	burst   int
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		buckets: cache.New(10*time.Minute, 15*time.Minute),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if limiter, ok := l.buckets.Get(ip); ok {
		return limiter.(*rate.Limiter).Allow()
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.buckets.SetDefault(ip, limiter)
	return limiter.Allow()
}

func (a *API) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !a.limiter.allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
