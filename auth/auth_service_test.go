package auth_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/vkid-relay/auth"
	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/oauth2"
	"github.com/jrsteele09/vkid-relay/pkce"
	"github.com/jrsteele09/vkid-relay/provider"
	"github.com/jrsteele09/vkid-relay/provider/providerfake"
	"github.com/jrsteele09/vkid-relay/server/authflowrepo"
	"github.com/stretchr/testify/require"
)

const (
	testClientID    = "51234567"
	testRedirectURI = "http://localhost/auth/callback"
)

// testFixture holds all test dependencies
type testFixture struct {
	pending  *authflowrepo.InMemoryRepo
	provider *providerfake.FakeProvider
	service  *auth.AuthorizationService

	lock        sync.Mutex
	transitions []auth.FlowState
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		pending:  authflowrepo.NewInMemoryRepo(10 * time.Minute),
		provider: providerfake.New(t),
	}
	client := provider.New(f.provider.Endpoints(), "5.199", 2*time.Second)

	service, err := auth.NewAuthorizationService(f.pending, client, auth.Settings{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		Scopes:      []string{"status", "wall", "friends", "video", "email"},
		Endpoints:   f.provider.Endpoints(),
	}, auth.WithStateObserver(func(_ pkce.CorrelationToken, to auth.FlowState) {
		f.lock.Lock()
		defer f.lock.Unlock()
		f.transitions = append(f.transitions, to)
	}))
	require.NoError(t, err)
	f.service = service
	return f
}

func (f *testFixture) flowStates() []auth.FlowState {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]auth.FlowState(nil), f.transitions...)
}

func TestNewAuthorizationService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewAuthorizationService(nil, nil, auth.Settings{})
	require.Error(t, err)

	repo := authflowrepo.NewInMemoryRepo(time.Minute)
	_, err = auth.NewAuthorizationService(repo, provider.New(provider.Endpoints{}, "", time.Second), auth.Settings{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "client id")
}

func TestBeginLogin_BuildsAuthorizeURL(t *testing.T) {
	f := setupTestFixture(t)

	target, err := f.service.BeginLogin(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(target)
	require.NoError(t, err)
	require.Equal(t, f.provider.Endpoints().AuthURL, u.Scheme+"://"+u.Host+u.Path)

	q := u.Query()
	require.Equal(t, string(oauth2.CodeResponseType), q.Get("response_type"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, string(oauth2.CodeMethodTypeS256), q.Get("code_challenge_method"))
	require.Equal(t, "status wall friends video email", q.Get("scope"))

	state := pkce.CorrelationToken(q.Get("state"))
	require.NotEmpty(t, state)

	verifier, err := f.pending.Take(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, pkce.GenerateChallenge(verifier), q.Get("code_challenge"))
	require.NotContains(t, target, verifier)

	require.Equal(t, []auth.FlowState{auth.AwaitingCallback}, f.flowStates())
}

func TestBeginLogin_DistinctStates(t *testing.T) {
	f := setupTestFixture(t)

	first, err := f.service.BeginLogin(context.Background())
	require.NoError(t, err)
	second, err := f.service.BeginLogin(context.Background())
	require.NoError(t, err)

	u1, _ := url.Parse(first)
	u2, _ := url.Parse(second)
	require.NotEqual(t, u1.Query().Get("state"), u2.Query().Get("state"))
	require.NotEqual(t, u1.Query().Get("code_challenge"), u2.Query().Get("code_challenge"))
	require.Equal(t, 2, f.pending.Len())
}

func TestHandleCallback_ConcreteScenario(t *testing.T) {
	f := setupTestFixture(t)
	f.provider.Handle(providerfake.PathToken, providerfake.EchoTokens("T1", "T2"))
	require.NoError(t, f.pending.Put(context.Background(), "S", "V"))

	tokens, err := f.service.HandleCallback(context.Background(), "abc", "S", "dev1")
	require.NoError(t, err)
	require.Equal(t, "T1", tokens.AccessToken)
	require.Equal(t, "T2", tokens.RefreshToken)

	reqs := f.provider.Requests(providerfake.PathToken)
	require.Len(t, reqs, 1)
	form := reqs[0]
	require.Equal(t, "authorization_code", form.Get("grant_type"))
	require.Equal(t, "abc", form.Get("code"))
	require.Equal(t, "V", form.Get("code_verifier"))
	require.Equal(t, "dev1", form.Get("device_id"))
	require.Equal(t, testClientID, form.Get("client_id"))
	require.Equal(t, testRedirectURI, form.Get("redirect_uri"))

	// the token request uses its own state, never the login correlation state
	require.NotEmpty(t, form.Get("state"))
	require.NotEqual(t, "S", form.Get("state"))

	require.Equal(t, []auth.FlowState{auth.Exchanging, auth.Established}, f.flowStates())
}

func TestHandleCallback_UnknownState(t *testing.T) {
	f := setupTestFixture(t)
	f.provider.Handle(providerfake.PathToken, providerfake.EchoTokens("T1", "T2"))

	_, err := f.service.HandleCallback(context.Background(), "valid-code", "never-issued", "dev1")
	require.ErrorIs(t, err, errors.ErrUnknownState)
	require.Empty(t, f.provider.Requests(providerfake.PathToken))
	require.Equal(t, []auth.FlowState{auth.Rejected}, f.flowStates())
}

func TestHandleCallback_StateIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)
	f.provider.Handle(providerfake.PathToken, providerfake.EchoTokens("T1", "T2"))
	require.NoError(t, f.pending.Put(context.Background(), "S", "V"))

	_, err := f.service.HandleCallback(context.Background(), "abc", "S", "dev1")
	require.NoError(t, err)

	_, err = f.service.HandleCallback(context.Background(), "abc", "S", "dev1")
	require.ErrorIs(t, err, errors.ErrUnknownState)
	require.Len(t, f.provider.Requests(providerfake.PathToken), 1)
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	f := setupTestFixture(t)
	f.provider.Handle(providerfake.PathToken, providerfake.WrongState("T1", "T2"))
	require.NoError(t, f.pending.Put(context.Background(), "S", "V"))

	tokens, err := f.service.HandleCallback(context.Background(), "abc", "S", "dev1")
	require.ErrorIs(t, err, errors.ErrStateMismatch)
	require.Empty(t, tokens.AccessToken)
	require.Equal(t, []auth.FlowState{auth.Exchanging, auth.Rejected}, f.flowStates())
}

func TestHandleCallback_MissingEchoedState(t *testing.T) {
	f := setupTestFixture(t)
	f.provider.Handle(providerfake.PathToken, providerfake.Raw(http.StatusOK, `{"access_token":"T1","refresh_token":"T2"}`))
	require.NoError(t, f.pending.Put(context.Background(), "S", "V"))

	_, err := f.service.HandleCallback(context.Background(), "abc", "S", "dev1")
	require.ErrorIs(t, err, errors.ErrStateMismatch)
}

func TestHandleCallback_ProviderError(t *testing.T) {
	f := setupTestFixture(t)
	payload := `{"error":"invalid_grant","error_description":"code is invalid or expired"}`
	f.provider.Handle(providerfake.PathToken, providerfake.Raw(http.StatusBadRequest, payload))
	require.NoError(t, f.pending.Put(context.Background(), "S", "V"))

	_, err := f.service.HandleCallback(context.Background(), "abc", "S", "dev1")

	var perr *errors.ProviderError
	require.True(t, errors.As(err, &perr))
	require.JSONEq(t, payload, string(perr.Payload))

	// the verifier is gone even though the exchange failed
	_, err = f.pending.Take(context.Background(), "S")
	require.ErrorIs(t, err, errors.ErrUnknownState)
}

func TestHandleCallback_MissingParameters(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.pending.Put(context.Background(), "S", "V"))

	tests := []struct {
		name     string
		code     string
		state    pkce.CorrelationToken
		deviceID string
	}{
		{"no code", "", "S", "dev1"},
		{"no state", "abc", "", "dev1"},
		{"no device", "abc", "S", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.HandleCallback(context.Background(), tt.code, tt.state, tt.deviceID)
			require.ErrorIs(t, err, errors.ErrInvalidRequest)
		})
	}
	require.Empty(t, f.provider.Requests(providerfake.PathToken))
}

func TestHandleCallback_UpstreamUnavailable(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(time.Minute)
	endpoints := provider.EndpointsForHosts("http://127.0.0.1:1", "http://127.0.0.1:1")
	service, err := auth.NewAuthorizationService(repo, provider.New(endpoints, "5.199", time.Second), auth.Settings{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		Endpoints:   endpoints,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Put(context.Background(), "S", "V"))

	_, err = service.HandleCallback(context.Background(), "abc", "S", "dev1")
	require.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
}

func TestFlowState_String(t *testing.T) {
	require.Equal(t, "awaiting_callback", auth.AwaitingCallback.String())
	require.True(t, auth.Established.Terminal())
	require.True(t, auth.Rejected.Terminal())
	require.False(t, auth.Exchanging.Terminal())
}
