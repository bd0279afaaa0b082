package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/api/response"
	"github.com/oelgazzar/nidgate/internal/store"
)

// writeServiceError maps service failures onto the API error contract.
// Missing rows become 404, validation problems 422 with the reason, and
// everything else a 500 whose detail stays in the server log.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var vErr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &vErr):
		response.WriteError(w, http.StatusUnprocessableEntity, vErr.Reason)
	default:
		logger.Error().Err(err).Msg("request failed")
		response.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
