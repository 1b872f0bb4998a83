package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/vkid-relay/oauth2"
	"github.com/jrsteele09/vkid-relay/pkce"
	"github.com/jrsteele09/vkid-relay/sessions"
	"github.com/rs/zerolog/log"
)

// Bound on the cleanup revoke issued when the browser left before receiving new tokens.
const abandonedRevokeTimeout = 10 * time.Second

// LoginHandler starts a login and sends the browser to the provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorizeURL, err := s.auth.BeginLogin(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

// CallbackHandler completes the login started by LoginHandler.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		// The user declined or the provider refused before issuing a code
		if providerErr := query.Get("error"); providerErr != "" {
			writeJSON(w, http.StatusBadRequest, detailResponse{Detail: map[string]string{
				"error":             providerErr,
				"error_description": query.Get("error_description"),
			}})
			return
		}

		// The exchange consumes the pending entry, so it must not be cut short by
		// the browser going away.
		tokens, err := s.auth.HandleCallback(providerContext(r), query.Get("code"), pkce.CorrelationToken(query.Get("state")), query.Get("device_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		if r.Context().Err() != nil {
			s.revokeAbandoned(tokens)
			return
		}

		sessions.Issue(w, r, tokens, query.Get("device_id"))
		http.Redirect(w, r, s.profilePath, http.StatusFound)
	}
}

// providerContext keeps request values but drops cancellation. A provider call that
// was sent may already have changed state upstream, so it runs to completion.
func providerContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// revokeAbandoned withdraws tokens that were issued to a client no longer listening.
func (s *Server) revokeAbandoned(tokens oauth2.TokenSet) {
	ctx, cancel := context.WithTimeout(context.Background(), abandonedRevokeTimeout)
	defer cancel()

	err := s.tokens.Revoke(ctx, sessions.Session{AccessToken: tokens.AccessToken})
	if err != nil {
		log.Warn().Err(err).Int64("user_id", tokens.UserID).Msg("Failed to revoke abandoned tokens")
		return
	}
	log.Info().Int64("user_id", tokens.UserID).Msg("Revoked abandoned tokens")
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens, err := s.tokens.Refresh(providerContext(r), sessions.Read(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		// The old refresh token is spent, so the new pair is withdrawn rather than dropped
		if r.Context().Err() != nil {
			s.revokeAbandoned(tokens)
			return
		}
		sessions.Update(w, r, tokens)
		writeMessage(w, "tokens refreshed")
	}
}

func (s *Server) RevokeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.tokens.Revoke(providerContext(r), sessions.Read(r)); err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, "tokens revoked")
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.tokens.Logout(providerContext(r), sessions.Read(r)); err != nil {
			writeError(w, r, err)
			return
		}
		sessions.Clear(w, r)
		writeMessage(w, "logged out")
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers CORS preflights; the headers come from CorsMiddleware.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
