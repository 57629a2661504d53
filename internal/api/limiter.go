package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// visitorLimiter throttles the public booking endpoint per client address,
// so one visitor hammering submit cannot starve the rest.
type visitorLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newVisitorLimiter(rps float64, burst int) *visitorLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &visitorLimiter{rps: rps, burst: burst}
}

func (l *visitorLimiter) allow(r *http.Request) bool {
	if l.rps <= 0 {
		return true
	}
	return l.getLimiter(clientKey(r)).Allow()
}

func (l *visitorLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}
