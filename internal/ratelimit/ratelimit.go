// Package ratelimit provides a process-local, per-key limiter used to
// throttle abuse-prone endpoints such as forgot-password. State lives in
// memory only: it resets on restart and is not shared across instances.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Store struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit rate.Limit
	burst int
	ttl   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewStore allows burst requests per key, refilling at a rate that spreads
// burst requests over window.
func NewStore(burst int, window time.Duration) *Store {
	s := &Store{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(burst)),
		burst:    burst,
		ttl:      window,
	}
	go s.cleanupLoop()
	return s
}

func (s *Store) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

// Remaining reports how many requests the key can still make right now.
func (s *Store) Remaining(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		return s.burst
	}
	return int(v.limiter.Tokens())
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for key, v := range s.visitors {
			if time.Since(v.lastSeen) > s.ttl {
				delete(s.visitors, key)
			}
		}
		s.mu.Unlock()
	}
}
