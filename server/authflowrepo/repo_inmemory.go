package authflowrepo

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/pkce"
	"github.com/rs/zerolog/log"
)

// InMemoryRepo is a thread-safe, time-windowed in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu      sync.Mutex
	states  map[pkce.CorrelationToken]PendingAuthorization
	ttl     time.Duration
	nowTime func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryOption modifies an InMemoryRepo.
type InMemoryOption func(*InMemoryRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) InMemoryOption {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory pending authorization repository whose
// entries expire after ttl.
func NewInMemoryRepo(ttl time.Duration, options ...InMemoryOption) *InMemoryRepo {
	r := &InMemoryRepo{
		states:  make(map[pkce.CorrelationToken]PendingAuthorization),
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Put stores a new pending authorization
func (r *InMemoryRepo) Put(_ context.Context, state pkce.CorrelationToken, verifier string) error {
	if state == "" || verifier == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "state and verifier are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowTime()
	if existing, ok := r.states[state]; ok && now.Before(existing.ExpiresAt) {
		return errors.ErrStateCollision
	}

	r.states[state] = PendingAuthorization{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.ttl),
	}
	return nil
}

// Take retrieves and removes a pending authorization in one step
func (r *InMemoryRepo) Take(_ context.Context, state pkce.CorrelationToken) (string, error) {
	if state == "" {
		return "", errors.ErrUnknownState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.states[state]
	if !ok {
		return "", errors.ErrUnknownState
	}
	delete(r.states, state)

	if !r.nowTime().Before(pending.ExpiresAt) {
		return "", errors.ErrUnknownState
	}
	return pending.CodeVerifier, nil
}

// Len returns the number of entries currently held, expired or not.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Sweep removes expired entries and returns how many were dropped.
func (r *InMemoryRepo) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowTime()
	removed := 0
	for state, pending := range r.states {
		if !now.Before(pending.ExpiresAt) {
			delete(r.states, state)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (r *InMemoryRepo) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept abandoned logins")
			}
		}
	}
}
