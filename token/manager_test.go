package token_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/provider"
	"github.com/jrsteele09/vkid-relay/provider/providerfake"
	"github.com/jrsteele09/vkid-relay/sessions"
	"github.com/jrsteele09/vkid-relay/token"
	"github.com/stretchr/testify/require"
)

const testClientID = "51234567"

var loggedIn = sessions.Session{AccessToken: "T1", RefreshToken: "T2", DeviceID: "dev1"}

func setupManager(t *testing.T) (*token.Manager, *providerfake.FakeProvider) {
	t.Helper()
	fake := providerfake.New(t)
	client := provider.New(fake.Endpoints(), "5.199", 2*time.Second)
	return token.NewManager(client, testClientID), fake
}

func TestRefresh_Success(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathToken, providerfake.EchoTokens("T3", "T4"))

	tokens, err := m.Refresh(context.Background(), loggedIn)
	require.NoError(t, err)
	require.Equal(t, "T3", tokens.AccessToken)
	require.Equal(t, "T4", tokens.RefreshToken)

	form := fake.Requests(providerfake.PathToken)[0]
	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "T2", form.Get("refresh_token"))
	require.Equal(t, "dev1", form.Get("device_id"))
	require.Equal(t, testClientID, form.Get("client_id"))
	require.NotEmpty(t, form.Get("state"))
}

func TestRefresh_FreshStatePerCall(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathToken, providerfake.EchoTokens("T3", "T4"))

	_, err := m.Refresh(context.Background(), loggedIn)
	require.NoError(t, err)
	_, err = m.Refresh(context.Background(), loggedIn)
	require.NoError(t, err)

	reqs := fake.Requests(providerfake.PathToken)
	require.Len(t, reqs, 2)
	require.NotEqual(t, reqs[0].Get("state"), reqs[1].Get("state"))
}

func TestRefresh_StateMismatch(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathToken, providerfake.WrongState("T3", "T4"))

	_, err := m.Refresh(context.Background(), loggedIn)
	require.ErrorIs(t, err, errors.ErrStateMismatch)
}

func TestRefresh_ProviderError(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathToken, providerfake.Raw(http.StatusBadRequest, `{"error":"invalid_grant"}`))

	_, err := m.Refresh(context.Background(), loggedIn)
	var perr *errors.ProviderError
	require.True(t, errors.As(err, &perr))
}

func TestRefresh_Unauthenticated(t *testing.T) {
	m, fake := setupManager(t)

	_, err := m.Refresh(context.Background(), sessions.Session{AccessToken: "T1"})
	require.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = m.Refresh(context.Background(), sessions.Session{RefreshToken: "T2"})
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
	require.Empty(t, fake.Requests(providerfake.PathToken))
}

func TestRevoke_SentinelCheck(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"acknowledged", `{"response":1}`, nil},
		{"zero", `{"response":0}`, errors.ErrAckFailure},
		{"empty object", `{}`, errors.ErrAckFailure},
		{"other value", `{"response":2}`, errors.ErrAckFailure},
		{"string one", `{"response":"1"}`, errors.ErrAckFailure},
		{"boolean", `{"response":true}`, errors.ErrAckFailure},
		{"null", `{"response":null}`, errors.ErrAckFailure},
		{"object", `{"response":{"ok":1}}`, errors.ErrAckFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake := setupManager(t)
			fake.Handle(providerfake.PathRevoke, providerfake.Raw(http.StatusOK, tt.body))

			err := m.Revoke(context.Background(), loggedIn)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRevoke_SendsTokenAndState(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathRevoke, providerfake.Ack(1))

	require.NoError(t, m.Revoke(context.Background(), loggedIn))

	form := fake.Requests(providerfake.PathRevoke)[0]
	require.Equal(t, "T1", form.Get("access_token"))
	require.Equal(t, testClientID, form.Get("client_id"))
	require.NotEmpty(t, form.Get("state"))
}

func TestRevoke_EchoedStateChecked(t *testing.T) {
	t.Run("matching echo", func(t *testing.T) {
		m, fake := setupManager(t)
		fake.Handle(providerfake.PathRevoke, func(form url.Values) (int, any) {
			return http.StatusOK, map[string]any{"response": 1, "state": form.Get("state")}
		})
		require.NoError(t, m.Revoke(context.Background(), loggedIn))
	})

	t.Run("different echo", func(t *testing.T) {
		m, fake := setupManager(t)
		fake.Handle(providerfake.PathRevoke, providerfake.Raw(http.StatusOK, `{"response":1,"state":"forged"}`))
		require.ErrorIs(t, m.Revoke(context.Background(), loggedIn), errors.ErrStateMismatch)
	})
}

func TestRevoke_ProviderError(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathRevoke, providerfake.Raw(http.StatusOK, `{"error":"invalid_token","response":1}`))

	err := m.Revoke(context.Background(), loggedIn)
	var perr *errors.ProviderError
	require.True(t, errors.As(err, &perr))
}

func TestRevoke_Unauthenticated(t *testing.T) {
	m, fake := setupManager(t)

	err := m.Revoke(context.Background(), sessions.Session{})
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
	require.Empty(t, fake.Requests(providerfake.PathRevoke))
}

func TestLogout_Success(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathRevoke, providerfake.Ack(1))
	fake.Handle(providerfake.PathLogout, providerfake.Ack(1))

	require.NoError(t, m.Logout(context.Background(), loggedIn))

	revokes := fake.Requests(providerfake.PathRevoke)
	logouts := fake.Requests(providerfake.PathLogout)
	require.Len(t, revokes, 1)
	require.Len(t, logouts, 1)
	require.Equal(t, "T1", logouts[0].Get("access_token"))
	require.NotEqual(t, revokes[0].Get("state"), logouts[0].Get("state"))
}

func TestLogout_RevokeFailureSkipsTermination(t *testing.T) {
	tests := []struct {
		name    string
		revoke  providerfake.Responder
		wantErr error
	}{
		{"not acknowledged", providerfake.Ack(0), errors.ErrAckFailure},
		{"upstream down", providerfake.Raw(http.StatusServiceUnavailable, `{}`), errors.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake := setupManager(t)
			fake.Handle(providerfake.PathRevoke, tt.revoke)
			fake.Handle(providerfake.PathLogout, providerfake.Ack(1))

			err := m.Logout(context.Background(), loggedIn)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, fake.Requests(providerfake.PathLogout))
		})
	}
}

func TestLogout_TerminationNotAcknowledged(t *testing.T) {
	m, fake := setupManager(t)
	fake.Handle(providerfake.PathRevoke, providerfake.Ack(1))
	fake.Handle(providerfake.PathLogout, providerfake.Raw(http.StatusOK, `{}`))

	err := m.Logout(context.Background(), loggedIn)
	require.ErrorIs(t, err, errors.ErrAckFailure)
}
