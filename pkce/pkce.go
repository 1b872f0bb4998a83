// Package pkce generates the secrets used by the login flow: the PKCE verifier and
// challenge, the login correlation token and the per-call anti-replay token.
package pkce

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	verifierLength = 48 // bytes of entropy, 64 base64url characters
	stateLength    = 32
)

// CorrelationToken ties a provider callback to the login that started it.
// It lives in the pending authorization store and is consumed exactly once.
type CorrelationToken string

// ReplayToken is minted for a single provider round trip and must be echoed back unchanged.
// It is never stored.
type ReplayToken string

// GenerateVerifier returns a random PKCE code verifier.
func GenerateVerifier() string {
	return randomString(verifierLength)
}

// GenerateChallenge derives the S256 code challenge for a verifier.
func GenerateChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// GenerateState returns a fresh login correlation token.
func GenerateState() CorrelationToken {
	return CorrelationToken(randomString(stateLength))
}

// GenerateReplayToken returns a fresh anti-replay token for one provider call.
func GenerateReplayToken() ReplayToken {
	return ReplayToken(randomString(stateLength))
}

// randomString panics when the system entropy source fails; nothing sensible can continue.
func randomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("pkce: reading random bytes: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
