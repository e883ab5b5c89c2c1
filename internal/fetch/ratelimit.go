package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum delay between requests to the same host.
// Politeness is per-host, not global: requests to different hosts proceed
// independently. The limiter is an explicit object passed to the Fetcher so
// tests can substitute a permissive one.
type HostLimiter struct {
	mu       sync.Mutex
	rps      float64
	burst    int
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter allowing rps sustained requests per
// second to each host with the given burst size.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed or the context is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.forHost(host).Wait(ctx)
}

func (l *HostLimiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[host] = lim
	}
	return lim
}
