package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/oauth2"
	"github.com/jrsteele09/vkid-relay/oauthmodel"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	maxResponseSize = 1 << 20
)

// Client performs the form encoded POSTs the provider expects. Every call is attempted
// exactly once: a transport failure or provider error is returned to the caller as is.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	apiVersion string
}

// Option modifies a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
// The supplied client is expected to carry its own timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a provider client. timeout bounds every outbound call.
func New(endpoints Endpoints, apiVersion string, timeout time.Duration, options ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
		apiVersion: apiVersion,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// ExchangeCode redeems an authorization code at the token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, req oauthmodel.CodeExchangeRequest) (oauth2.TokenResponse, error) {
	var resp oauth2.TokenResponse
	if err := c.postJSON(ctx, c.endpoints.TokenURL, req.Values(), &resp); err != nil {
		return oauth2.TokenResponse{}, fmt.Errorf("[Client ExchangeCode] %w", err)
	}
	return resp, nil
}

// RefreshToken rotates a token pair at the token endpoint.
func (c *Client) RefreshToken(ctx context.Context, req oauthmodel.RefreshRequest) (oauth2.TokenResponse, error) {
	var resp oauth2.TokenResponse
	if err := c.postJSON(ctx, c.endpoints.TokenURL, req.Values(), &resp); err != nil {
		return oauth2.TokenResponse{}, fmt.Errorf("[Client RefreshToken] %w", err)
	}
	return resp, nil
}

// Revoke withdraws the grants behind an access token.
func (c *Client) Revoke(ctx context.Context, req oauthmodel.RevokeRequest) (oauth2.AckResponse, error) {
	var resp oauth2.AckResponse
	if err := c.postJSON(ctx, c.endpoints.RevokeURL, req.Values(), &resp); err != nil {
		return oauth2.AckResponse{}, fmt.Errorf("[Client Revoke] %w", err)
	}
	return resp, nil
}

// Logout terminates the user's provider session.
func (c *Client) Logout(ctx context.Context, req oauthmodel.RevokeRequest) (oauth2.AckResponse, error) {
	var resp oauth2.AckResponse
	if err := c.postJSON(ctx, c.endpoints.LogoutURL, req.Values(), &resp); err != nil {
		return oauth2.AckResponse{}, fmt.Errorf("[Client Logout] %w", err)
	}
	return resp, nil
}

// CallMethod invokes an API method (e.g. "wall.get") and returns the raw body.
func (c *Client) CallMethod(ctx context.Context, method, accessToken string) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("access_token", accessToken)
	form.Set("v", c.apiVersion)

	body, err := c.postForm(ctx, c.endpoints.APIBaseURL+"/"+method, form)
	if err != nil {
		return nil, fmt.Errorf("[Client CallMethod %s] %w", method, err)
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, form url.Values, out any) error {
	body, err := c.postForm(ctx, endpoint, form)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", errors.ErrUpstreamUnavailable, err)
	}
	return nil
}

// postForm sends the form and returns the JSON object body. A body carrying an
// "error" field becomes a *errors.ProviderError holding the whole payload.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("Provider call failed")
		return nil, fmt.Errorf("%w: %v", errors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("Provider call")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", errors.ErrUpstreamUnavailable, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: status %d with non-JSON body", errors.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if _, ok := fields["error"]; ok {
		return nil, &errors.ProviderError{Payload: json.RawMessage(body)}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", errors.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return json.RawMessage(body), nil
}
