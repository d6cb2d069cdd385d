package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mindcare/mindcare-server/internal/api/respond"
	"github.com/mindcare/mindcare-server/internal/model"
)

// writeServiceError maps domain errors to HTTP status codes. Validation and
// not-found messages are caller-correctable and returned verbatim; anything
// unexpected is logged server-side and answered with an opaque 500 body.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case model.IsValidationError(err):
		respond.WriteBadRequest(w, err.Error())
	case model.IsNotFoundError(err):
		respond.WriteNotFound(w, err.Error())
	case model.IsConflictError(err):
		respond.WriteConflict(w, err.Error())
	case model.IsStoreUnavailable(err):
		log.Warn().Err(err).Msg("store unavailable")
		respond.WriteUnavailable(w, "store unavailable, retry later")
	default:
		log.Error().Stack().Err(err).Msg("request failed")
		respond.WriteInternalError(w, "internal server error")
	}
}
