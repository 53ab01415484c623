package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
)

func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}

func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{"error": message})
}

// DomainErrorResponse maps domain sentinel errors to HTTP codes
func DomainErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionExists), errors.Is(err, domain.ErrConflict):
		ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		ErrorResponse(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrExternalService), errors.Is(err, domain.ErrReportTimedOut):
		ErrorResponse(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("unhandled error", "error", err.Error())
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

func ParseJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
