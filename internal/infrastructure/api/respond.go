package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors onto the HTTP status taxonomy. Anything
// unmapped is a 500 with a generic body so internals never leak.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var upstream *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnhandledTopic),
		errors.Is(err, domain.ErrDuplicateRegistration):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownTenant), errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &upstream):
		logger.Error().Err(err).Msg("Upstream platform request failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream platform error"})
	default:
		logger.Error().Err(err).Msg("Unhandled internal error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
