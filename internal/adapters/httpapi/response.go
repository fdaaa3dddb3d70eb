package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/routecard/internal/ports/primary"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, primary.ErrCardNotFound),
		errors.Is(err, primary.ErrOperationNotFound),
		errors.Is(err, primary.ErrItemNotFound),
		errors.Is(err, primary.ErrAttachmentNotFound),
		errors.Is(err, primary.ErrCatalogNotFound):
		return http.StatusNotFound
	case errors.Is(err, primary.ErrInvalidCredentials),
		errors.Is(err, primary.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, primary.ErrAttachmentRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, primary.ErrInvalidAction),
		errors.Is(err, primary.ErrInvalidArgument),
		errors.Is(err, primary.ErrIsAGroup),
		errors.Is(err, primary.ErrNotAGroup),
		errors.Is(err, primary.ErrNotPerItem),
		errors.Is(err, primary.ErrNotDone),
		errors.Is(err, primary.ErrNotArchived):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("handler failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errors.Join(primary.ErrInvalidArgument, err)
	}
	return nil
}
