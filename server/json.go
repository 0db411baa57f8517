package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/sessionworks/go-session-server/internal/errors"
)

// response is the envelope every endpoint answers with.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error, message string) {
	writeJSON(w, statusForError(err), response{Success: false, Message: message})
}

// statusForError maps the error taxonomy onto HTTP status codes. Codec-level
// kinds never reach this point; the session manager collapses them first.
func statusForError(err error) int {
	switch {
	case errs.Is(err, errs.ErrUnauthenticated), errs.Is(err, errs.ErrUnauthorized), errs.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errs.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrUserExists):
		return http.StatusConflict
	case errs.Is(err, errs.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
		return false
	}
	return true
}
