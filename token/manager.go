package token

import (
	"context"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/oauth2"
	"github.com/jrsteele09/vkid-relay/oauthmodel"
	"github.com/jrsteele09/vkid-relay/pkce"
	"github.com/jrsteele09/vkid-relay/sessions"
	"github.com/rs/zerolog/log"
)

// ProviderClient is the subset of the provider client the manager needs.
type ProviderClient interface {
	RefreshToken(ctx context.Context, req oauthmodel.RefreshRequest) (oauth2.TokenResponse, error)
	Revoke(ctx context.Context, req oauthmodel.RevokeRequest) (oauth2.AckResponse, error)
	Logout(ctx context.Context, req oauthmodel.RevokeRequest) (oauth2.AckResponse, error)
}

// Manager refreshes, revokes and terminates provider sessions. Every call mints its
// own anti-replay state and checks it before trusting the response.
type Manager struct {
	provider ProviderClient
	clientID string
}

func NewManager(provider ProviderClient, clientID string) *Manager {
	return &Manager{provider: provider, clientID: clientID}
}

// Refresh exchanges the session's refresh token for a new token pair.
func (m *Manager) Refresh(ctx context.Context, session sessions.Session) (oauth2.TokenSet, error) {
	if session.RefreshToken == "" || session.DeviceID == "" {
		return oauth2.TokenSet{}, errors.Wrapf(errors.ErrUnauthenticated, "[Manager Refresh] refresh token and device id are required")
	}

	replay := pkce.GenerateReplayToken()
	resp, err := m.provider.RefreshToken(ctx, oauthmodel.RefreshRequest{
		RefreshToken: session.RefreshToken,
		ClientID:     m.clientID,
		DeviceID:     session.DeviceID,
		State:        replay,
	})
	if err != nil {
		return oauth2.TokenSet{}, errors.Wrapf(err, "[Manager Refresh]")
	}
	if resp.State != string(replay) {
		return oauth2.TokenSet{}, errors.Wrapf(errors.ErrStateMismatch, "[Manager Refresh] token response")
	}
	return resp.TokenSet(), nil
}

// Revoke withdraws the grants behind the session's access token.
func (m *Manager) Revoke(ctx context.Context, session sessions.Session) error {
	if !session.Authenticated() {
		return errors.Wrapf(errors.ErrUnauthenticated, "[Manager Revoke] access token is required")
	}

	replay := pkce.GenerateReplayToken()
	ack, err := m.provider.Revoke(ctx, m.revokeRequest(session, replay))
	if err != nil {
		return errors.Wrapf(err, "[Manager Revoke]")
	}
	return errors.Wrapf(checkAck(ack, replay), "[Manager Revoke]")
}

// Logout revokes the session's grants and then ends the provider session.
// The logout endpoint is only called once revocation has been acknowledged.
func (m *Manager) Logout(ctx context.Context, session sessions.Session) error {
	if err := m.Revoke(ctx, session); err != nil {
		return errors.Wrapf(err, "[Manager Logout] revoke")
	}

	replay := pkce.GenerateReplayToken()
	ack, err := m.provider.Logout(ctx, m.revokeRequest(session, replay))
	if err != nil {
		return errors.Wrapf(err, "[Manager Logout]")
	}
	if err := checkAck(ack, replay); err != nil {
		return errors.Wrapf(err, "[Manager Logout]")
	}
	log.Debug().Msg("Provider session terminated")
	return nil
}

func (m *Manager) revokeRequest(session sessions.Session, replay pkce.ReplayToken) oauthmodel.RevokeRequest {
	return oauthmodel.RevokeRequest{
		ClientID:    m.clientID,
		AccessToken: session.AccessToken,
		State:       replay,
	}
}

// checkAck accepts only the success sentinel. The provider does not always echo
// state on these endpoints, but an echoed value that differs is rejected.
func checkAck(ack oauth2.AckResponse, replay pkce.ReplayToken) error {
	if ack.State != "" && ack.State != string(replay) {
		return errors.ErrStateMismatch
	}
	if !ack.Acknowledged() {
		return errors.ErrAckFailure
	}
	return nil
}
