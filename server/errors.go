package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"github.com/rs/zerolog/log"
)

type detailResponse struct {
	Detail any `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("[writeJSON] failed to encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// writeError maps a relay error onto its HTTP status and body. Provider payloads are
// passed back verbatim.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var providerErr *errors.ProviderError
	switch {
	case errors.As(err, &providerErr):
		writeJSON(w, http.StatusBadRequest, detailResponse{Detail: providerErr.Payload})
	case errors.Is(err, errors.ErrUnknownState), errors.Is(err, errors.ErrStateMismatch):
		writeDetail(w, http.StatusBadRequest, "invalid state")
	case errors.Is(err, errors.ErrAckFailure):
		writeDetail(w, http.StatusBadRequest, "something went wrong")
	case errors.Is(err, errors.ErrInvalidRequest):
		writeDetail(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, errors.ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, errors.ErrUpstreamUnavailable):
		writeDetail(w, http.StatusBadGateway, "upstream unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	log.Debug().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
}
