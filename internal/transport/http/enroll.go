package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fitgrid/classbooking/internal/app"
	"github.com/fitgrid/classbooking/internal/auth"
)

// SessionEnroller is the minimal interface needed to book a seat.
type SessionEnroller interface {
	Enroll(ctx context.Context, memberID, sessionID string) (app.EnrollResult, error)
}

// Enroll serves POST /schedule/sessions/{sessionID}/enroll for an
// authenticated member.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	res, err := h.enrollments.Enroll(r.Context(), id.MemberID, sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, enrollResponse{
		SessionID:        res.Enrollment.SessionID,
		EnrolledAt:       res.Enrollment.EnrolledAt,
		PackageID:        res.PackageID,
		PackageRemaining: res.PackageRemaining,
	})
}

type enrollResponse struct {
	SessionID        string    `json:"session_id"`
	EnrolledAt       time.Time `json:"enrolled_at"`
	PackageID        string    `json:"package_id"`
	PackageRemaining int       `json:"package_remaining"`
}
