package authflowrepo

import (
	"context"
	"time"

	"github.com/jrsteele09/vkid-relay/pkce"
)

// PendingAuthorization correlates an in-flight login with its PKCE verifier.
type PendingAuthorization struct {
	State        pkce.CorrelationToken `json:"state"`
	CodeVerifier string                `json:"code_verifier"`
	CreatedAt    time.Time             `json:"created_at"`
	ExpiresAt    time.Time             `json:"expires_at"`
}

// Repo stores pending authorizations. Entries are single use: Take removes what it returns.
type Repo interface {
	// Put fails with ErrStateCollision if state is already pending. It never overwrites.
	Put(ctx context.Context, state pkce.CorrelationToken, verifier string) error
	// Take returns and deletes the verifier for state, or ErrUnknownState.
	Take(ctx context.Context, state pkce.CorrelationToken) (string, error)
}
