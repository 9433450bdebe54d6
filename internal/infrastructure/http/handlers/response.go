package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domerrors "github.com/DELTAJoSch/Horus/internal/domain/errors"
)

// writeErr sends JSON { "error": message }.
func writeErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceErr maps domain error kinds to HTTP statuses. Internal
// faults are logged with a reference id; the client sees only the
// reference, never the cause.
func writeServiceErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domerrors.ErrInvalidArgument):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domerrors.ErrPermissionDenied):
		writeErr(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domerrors.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		ref := uuid.NewString()
		log.Error().Err(err).Str("ref", ref).Msg("internal fault")
		writeErr(w, http.StatusInternalServerError, "internal error, reference "+ref)
	}
}
