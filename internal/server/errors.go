package server

import (
	"errors"
	"net/http"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// writeActionError maps store and reducer errors onto HTTP responses.
// Internal failures never leak their message.
func writeActionError(w http.ResponseWriter, err error) {
	code := treasurehunt.Code(err)
	switch {
	case errors.Is(err, huntstore.ErrNotFound):
		writeCodedError(w, http.StatusNotFound, "HUNT_NOT_FOUND", "hunt not found")
	case errors.Is(err, treasurehunt.ErrInvalidInput), errors.Is(err, treasurehunt.ErrUnknownActionType):
		writeCodedError(w, http.StatusBadRequest, code, err.Error())
	case errors.Is(err, treasurehunt.ErrUnknownQRCode):
		writeCodedError(w, http.StatusNotFound, code, err.Error())
	case errors.Is(err, treasurehunt.ErrGameNotActive),
		errors.Is(err, treasurehunt.ErrDuplicateScan),
		errors.Is(err, treasurehunt.ErrTeamMismatch):
		writeCodedError(w, http.StatusConflict, code, err.Error())
	case errors.Is(err, huntstore.ErrTooManyConflicts):
		writeCodedError(w, http.StatusServiceUnavailable, "TOO_MANY_CONFLICTS", "hunt is busy, retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
