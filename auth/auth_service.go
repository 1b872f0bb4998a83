package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/oauth2"
	"github.com/jrsteele09/vkid-relay/oauthmodel"
	"github.com/jrsteele09/vkid-relay/pkce"
	"github.com/jrsteele09/vkid-relay/provider"
	"github.com/jrsteele09/vkid-relay/server/authflowrepo"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// CodeExchanger redeems authorization codes at the provider token endpoint.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, req oauthmodel.CodeExchangeRequest) (oauth2.TokenResponse, error)
}

// StateObserver is told about every flow transition.
type StateObserver func(state pkce.CorrelationToken, to FlowState)

// Settings are the fixed client registration values sent to the provider.
type Settings struct {
	ClientID    string
	RedirectURI string
	Scopes      []string
	Endpoints   provider.Endpoints
}

// AuthorizationService drives a login from the provider redirect to an issued token set.
type AuthorizationService struct {
	pending   authflowrepo.Repo
	exchanger CodeExchanger
	oauth     *xoauth2.Config
	clientID  string
	redirect  string
	observer  StateObserver
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithStateObserver registers a callback invoked on each flow transition.
func WithStateObserver(observer StateObserver) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.observer = observer
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(
	pending authflowrepo.Repo,
	exchanger CodeExchanger,
	settings Settings,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if pending == nil {
		return nil, fmt.Errorf("[NewAuthorizationService] pending authorization repo is required")
	}
	if exchanger == nil {
		return nil, fmt.Errorf("[NewAuthorizationService] code exchanger is required")
	}
	if settings.ClientID == "" || settings.RedirectURI == "" {
		return nil, fmt.Errorf("[NewAuthorizationService] client id and redirect uri are required")
	}

	as := &AuthorizationService{
		pending:   pending,
		exchanger: exchanger,
		clientID:  settings.ClientID,
		redirect:  settings.RedirectURI,
		oauth: &xoauth2.Config{
			ClientID:    settings.ClientID,
			Endpoint:    settings.Endpoints.OAuth2(),
			RedirectURL: settings.RedirectURI,
			Scopes:      settings.Scopes,
		},
		observer: func(pkce.CorrelationToken, FlowState) {},
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// BeginLogin stores a fresh state/verifier pair and returns the provider authorization URL.
func (as *AuthorizationService) BeginLogin(ctx context.Context) (string, error) {
	state := pkce.GenerateState()
	verifier := pkce.GenerateVerifier()

	if err := as.pending.Put(ctx, state, verifier); err != nil {
		return "", errors.Wrapf(err, "[AuthorizationService BeginLogin] storing pending authorization")
	}
	as.transition(state, AwaitingCallback)

	return as.oauth.AuthCodeURL(string(state), xoauth2.S256ChallengeOption(verifier)), nil
}

// HandleCallback consumes the pending verifier for state and redeems code for tokens.
// The token request carries its own anti-replay state, which must come back unchanged.
func (as *AuthorizationService) HandleCallback(ctx context.Context, code string, state pkce.CorrelationToken, deviceID string) (oauth2.TokenSet, error) {
	if strings.TrimSpace(code) == "" || state == "" || strings.TrimSpace(deviceID) == "" {
		as.transition(state, Rejected)
		return oauth2.TokenSet{}, errors.Wrapf(errors.ErrInvalidRequest, "code, state and device_id are required")
	}

	verifier, err := as.pending.Take(ctx, state)
	if err != nil {
		as.transition(state, Rejected)
		return oauth2.TokenSet{}, errors.Wrapf(err, "[AuthorizationService HandleCallback]")
	}
	as.transition(state, Exchanging)

	replay := pkce.GenerateReplayToken()
	resp, err := as.exchanger.ExchangeCode(ctx, oauthmodel.CodeExchangeRequest{
		Code:         code,
		CodeVerifier: verifier,
		RedirectURI:  as.redirect,
		ClientID:     as.clientID,
		DeviceID:     deviceID,
		State:        replay,
	})
	if err != nil {
		as.transition(state, Rejected)
		return oauth2.TokenSet{}, errors.Wrapf(err, "[AuthorizationService HandleCallback] exchange")
	}
	if resp.State != string(replay) {
		as.transition(state, Rejected)
		return oauth2.TokenSet{}, errors.Wrapf(errors.ErrStateMismatch, "[AuthorizationService HandleCallback] token response")
	}

	as.transition(state, Established)
	return resp.TokenSet(), nil
}

func (as *AuthorizationService) transition(state pkce.CorrelationToken, to FlowState) {
	log.Debug().Str("flow_state", to.String()).Msg("Login flow transition")
	as.observer(state, to)
}
