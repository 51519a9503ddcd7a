package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fitgrid/classbooking/internal/auth"
	"github.com/fitgrid/classbooking/internal/domain"
)

// RosterLister is the minimal interface needed to list a session's roster.
type RosterLister interface {
	ListRoster(ctx context.Context, caller auth.Identity, sessionID string) ([]domain.RosterEntry, error)
}

// Roster serves GET /schedule/sessions/{sessionID}/roster for staff.
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	entries, err := h.roster.ListRoster(r.Context(), id, sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]rosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, rosterEntryResponse{
			MemberID:   e.MemberID,
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Email:      emptyToNil(e.Email),
			EnrolledAt: e.EnrolledAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type rosterEntryResponse struct {
	MemberID   string    `json:"member_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      *string   `json:"email"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
