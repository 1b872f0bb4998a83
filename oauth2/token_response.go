package oauth2

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TokenResponse represents the body returned by the provider token endpoint
// for both the authorization_code and refresh_token grants.
type TokenResponse struct {
	// AccessToken is the bearer credential used against the provider API.
	// Usage: sent as the access_token form field on every API method call
	// Lifespan: Short-lived (typically 1 hour)
	AccessToken string `json:"access_token,omitempty"`

	// RefreshToken is the longer-lived credential used to obtain a new access token.
	// Usage: Send to the token endpoint with grant_type=refresh_token
	// Security: Rotates on each use, the previous value stops working
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the provider's identity token. The relay does not verify or use it.
	IDToken string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token.
	// Example: "Bearer"
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 3600
	ExpiresIn int `json:"expires_in,omitempty"`

	// UserID is the provider's identifier for the authenticated user.
	UserID int64 `json:"user_id,omitempty"`

	// State echoes the anti-replay state sent with the request.
	// Validation: must equal the value sent, otherwise the response is discarded
	State string `json:"state,omitempty"`

	// Scope is the space separated list of granted scopes.
	Scope string `json:"scope,omitempty"`
}

// TokenSet is the credential pair handed to the session carrier once a token
// response has passed every check.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	UserID       int64
	ExpiresIn    int
}

// TokenSet extracts the credentials from a validated response.
func (t TokenResponse) TokenSet() TokenSet {
	return TokenSet{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		IDToken:      t.IDToken,
		UserID:       t.UserID,
		ExpiresIn:    t.ExpiresIn,
	}
}

// AckResponse is returned by the revoke and logout endpoints.
// Example: {"response": 1}
type AckResponse struct {
	// Response is AckSuccess when the request was honoured. Anything else, including
	// the same digit as a string or a boolean, is a failure.
	Response json.RawMessage `json:"response"`

	// State is echoed by some provider versions. When present it must match the value sent.
	State string `json:"state,omitempty"`
}

// Acknowledged reports whether the provider signalled success.
func (a AckResponse) Acknowledged() bool {
	return bytes.Equal(bytes.TrimSpace(a.Response), []byte(strconv.Itoa(AckSuccess)))
}
