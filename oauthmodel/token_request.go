package oauthmodel

import (
	"net/url"

	"github.com/jrsteele09/vkid-relay/oauth2"
	"github.com/jrsteele09/vkid-relay/pkce"
)

// CodeExchangeRequest holds the form sent to the provider token endpoint to redeem
// an authorization code. Built once per callback and never persisted.
type CodeExchangeRequest struct {
	// Code is the authorization code received on the callback.
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// CodeVerifier is the PKCE secret whose challenge was sent on the authorize redirect.
	CodeVerifier string

	// RedirectURI must match the redirect_uri sent on the authorize redirect.
	RedirectURI string

	// ClientID identifies this relay to the provider.
	ClientID string

	// DeviceID is supplied by the provider on the callback and required on every
	// later token endpoint call.
	DeviceID string

	// State is a fresh anti-replay token, unrelated to the login correlation state.
	State pkce.ReplayToken
}

func (r CodeExchangeRequest) Values() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(oauth2.AuthorizationCodeGrant))
	v.Set("code", r.Code)
	v.Set("code_verifier", r.CodeVerifier)
	v.Set("redirect_uri", r.RedirectURI)
	v.Set("client_id", r.ClientID)
	v.Set("device_id", r.DeviceID)
	v.Set("state", string(r.State))
	return v
}

// RefreshRequest holds the form sent to the token endpoint to rotate a token pair.
type RefreshRequest struct {
	RefreshToken string
	ClientID     string
	DeviceID     string
	State        pkce.ReplayToken
}

func (r RefreshRequest) Values() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(oauth2.RefreshTokenCodeGrant))
	v.Set("refresh_token", r.RefreshToken)
	v.Set("client_id", r.ClientID)
	v.Set("device_id", r.DeviceID)
	v.Set("state", string(r.State))
	return v
}

// RevokeRequest is sent to both the revoke and the logout endpoints.
type RevokeRequest struct {
	ClientID    string
	AccessToken string
	State       pkce.ReplayToken
}

func (r RevokeRequest) Values() url.Values {
	v := url.Values{}
	v.Set("client_id", r.ClientID)
	v.Set("access_token", r.AccessToken)
	v.Set("state", string(r.State))
	return v
}
