package server

import (
	"sync"
	"time"
)

const (
	bucketIdleLimit = time.Hour
	sweepInterval   = 30 * time.Minute
)

type clientBucket struct {
	lastRefill time.Time
	tokens     int
}

// RateLimiter is a per-client token bucket refilled in full every window.
type RateLimiter struct {
	clients   map[string]*clientBucket
	stop      chan struct{}
	now       func() time.Time
	window    time.Duration
	capacity  int
	mu        sync.Mutex
	closeOnce sync.Once
}

// NewRateLimiter allows capacity requests per window for each client and
// starts a goroutine that forgets idle clients.
func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*clientBucket),
		stop:     make(chan struct{}),
		now:      time.Now,
		window:   window,
		capacity: capacity,
	}
	go rl.sweepLoop()
	return rl
}

// Allow consumes a token for client and reports whether the request may proceed.
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	bucket, ok := r.clients[client]
	if !ok {
		r.clients[client] = &clientBucket{tokens: r.capacity - 1, lastRefill: now}
		return r.capacity > 0
	}

	if now.Sub(bucket.lastRefill) >= r.window {
		bucket.tokens = r.capacity
		bucket.lastRefill = now
	}
	if bucket.tokens <= 0 {
		return false
	}
	bucket.tokens--
	return true
}

// RetryAfter returns how long client must wait for a refill.
func (r *RateLimiter) RetryAfter(client string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.clients[client]
	if !ok {
		return 0
	}
	wait := r.window - r.now().Sub(bucket.lastRefill)
	if wait < 0 {
		return 0
	}
	return wait
}

// Stop ends the sweep goroutine.
func (r *RateLimiter) Stop() {
	r.closeOnce.Do(func() { close(r.stop) })
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for client, bucket := range r.clients {
		if now.Sub(bucket.lastRefill) > bucketIdleLimit {
			delete(r.clients, client)
		}
	}
}
