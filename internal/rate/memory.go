package rate

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es un Limiter en proceso. Sirve para una sola réplica.
type MemoryLimiter struct {
	policy Policy
	mu     sync.Mutex
	c      *gocache.Cache
}

func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{policy: p, c: gocache.New(p.Window, 2*p.Window)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now()
	start := l.policy.windowStart(now)
	k := key + ":" + strconv.FormatInt(start.Unix(), 10)
	ttl := start.Add(l.policy.Window).Sub(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.c.Add(k, int64(1), ttl); err != nil {
		hits, err := l.c.IncrementInt64(k, 1)
		if err != nil {
			return Result{}, err
		}
		return l.policy.result(hits, ttl), nil
	}
	return l.policy.result(1, ttl), nil
}
