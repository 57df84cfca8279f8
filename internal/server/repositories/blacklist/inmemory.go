package blacklist

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps the revoked-token set in process memory.
// Intended for tests and local runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]time.Time)}
}

func (r *InMemoryRepository) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Keep the first revocation timestamp on repeat calls.
	if _, ok := r.tokens[token]; !ok {
		r.tokens[token] = time.Now()
	}
	return nil
}

func (r *InMemoryRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tokens[token]
	return ok, nil
}

func (r *InMemoryRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, revokedAt := range r.tokens {
		if revokedAt.Before(cutoff) {
			delete(r.tokens, token)
			n++
		}
	}
	return n, nil
}
