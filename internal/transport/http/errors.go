package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fitgrid/classbooking/internal/domain"
)

const (
	codeNotFound          = "not_found"
	codeInvalidID         = "invalid_id"
	codeInvalidDateRange  = "invalid_date_range"
	codeSessionNotFound   = "session_not_found"
	codePastSession       = "past_session"
	codeAlreadyEnrolled   = "already_enrolled"
	codeSessionFull       = "session_full"
	codeNoValidPackage    = "no_valid_package"
	codeDailyLimitReached = "daily_limit_reached"
	codeScheduleOverlap   = "schedule_overlap"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors to HTTP responses. Validation
// rejections keep their user-actionable message; anything unrecognized is
// logged and surfaced as a generic internal error.
func writeServiceError(w http.ResponseWriter, logger *log.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, codeSessionNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrPastSession):
		writeError(w, http.StatusBadRequest, codePastSession, err.Error())
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		writeError(w, http.StatusBadRequest, codeAlreadyEnrolled, err.Error())
	case errors.Is(err, domain.ErrSessionFull):
		writeError(w, http.StatusBadRequest, codeSessionFull, err.Error())
	case errors.Is(err, domain.ErrNoValidEntitlement):
		writeError(w, http.StatusBadRequest, codeNoValidPackage, err.Error())
	case errors.Is(err, domain.ErrDailyLimitReached):
		writeError(w, http.StatusBadRequest, codeDailyLimitReached, err.Error())
	case errors.Is(err, domain.ErrScheduleOverlap):
		writeError(w, http.StatusBadRequest, codeScheduleOverlap, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	default:
		if logger != nil {
			logger.Printf("ERROR: %v", err)
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
