// Package tokenstore provides in-memory single-use token registries for
// account activation and password reset flows. Tokens are opaque UUID
// strings; each one can be redeemed at most once.
package tokenstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[T any] struct {
	payload   T
	createdAt time.Time
}

// Registry is a concurrency-safe single-use token registry. A zero TTL
// keeps entries until they are redeemed or revoked; a positive TTL makes
// expired entries invisible and sweeps them in the background.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// New creates a registry. With ttl > 0 a janitor goroutine sweeps expired
// entries; call Close when the registry is no longer needed.
func New[T any](ttl time.Duration) *Registry[T] {
	r := &Registry[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if ttl > 0 {
		go r.janitor()
	}

	return r
}

// Issue stores the payload under a fresh token and returns the token.
// The token is unique within the live entry set.
func (r *Registry[T]) Issue(payload T) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := uuid.NewString()
	for {
		if _, exists := r.entries[token]; !exists {
			break
		}
		token = uuid.NewString()
	}

	r.entries[token] = entry[T]{payload: payload, createdAt: r.now()}
	return token
}

// Peek returns the payload for token without consuming it
func (r *Registry[T]) Peek(token string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok || r.expired(e) {
		var zero T
		return zero, false
	}
	return e.payload, true
}

// Redeem atomically removes the token and returns its payload. Of any
// number of concurrent calls with the same token, at most one succeeds.
func (r *Registry[T]) Redeem(token string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok || r.expired(e) {
		var zero T
		return zero, false
	}
	delete(r.entries, token)
	return e.payload, true
}

// RevokeWhere removes every live entry whose payload matches the
// predicate and returns the number removed
func (r *Registry[T]) RevokeWhere(match func(T) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, e := range r.entries {
		if match(e.payload) {
			delete(r.entries, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if !r.expired(e) {
			n++
		}
	}
	return n
}

// Close stops the janitor goroutine
func (r *Registry[T]) Close() {
	r.once.Do(func() {
		close(r.done)
	})
}

func (r *Registry[T]) expired(e entry[T]) bool {
	return r.ttl > 0 && r.now().Sub(e.createdAt) > r.ttl
}

func (r *Registry[T]) janitor() {
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			for token, e := range r.entries {
				if r.expired(e) {
					delete(r.entries, token)
				}
			}
			r.mu.Unlock()
		}
	}
}
