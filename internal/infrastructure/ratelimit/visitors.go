package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor is the token bucket for a single client key
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// VisitorLimiter is a thread-safe set of per-client token buckets.
// Buckets idle for longer than the idle TTL are swept periodically.
type VisitorLimiter struct {
	visitors map[string]*visitor
	mutex    sync.Mutex

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewVisitorLimiter creates a limiter allowing perMinute requests per key per minute,
// with a burst of the same size. perMinute <= 0 allows everything.
func NewVisitorLimiter(perMinute int, idleTTL time.Duration) *VisitorLimiter {
	l := &VisitorLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Inf,
		burst:    perMinute,
		idleTTL:  idleTTL,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if perMinute > 0 {
		l.limit = rate.Limit(float64(perMinute) / 60.0)
	}

	// Sweep idle visitors every idle TTL
	if idleTTL > 0 {
		go l.cleanupIdle()
	}

	return l
}

// Allow reports whether the client identified by key may proceed now
func (l *VisitorLimiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mutex.Lock()
	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	now := l.now()
	v.lastSeen = now
	l.mutex.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Close stops the idle sweep
func (l *VisitorLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// size returns the number of tracked visitors
func (l *VisitorLimiter) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.visitors)
}

func (l *VisitorLimiter) cleanupIdle() {
	ticker := time.NewTicker(l.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops visitors not seen within the idle TTL
func (l *VisitorLimiter) sweep() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}
