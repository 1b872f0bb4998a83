package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/jrsteele09/vkid-relay/sessions"
)

// userMetricHandler relays one provider method for the session's access token.
func (s *Server) userMetricHandler(fetch func(ctx context.Context, accessToken string) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessions.Read(r)
		if !session.Authenticated() {
			writeError(w, r, errors.ErrUnauthenticated)
			return
		}
		body, err := fetch(providerContext(r), session.AccessToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func (s *Server) AllInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessions.Read(r)
		if !session.Authenticated() {
			writeError(w, r, errors.ErrUnauthenticated)
			return
		}
		info, err := s.users.AllInfo(providerContext(r), session.AccessToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
