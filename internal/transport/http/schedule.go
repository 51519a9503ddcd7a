package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fitgrid/classbooking/internal/app"
	"github.com/fitgrid/classbooking/internal/domain"
)

// ScheduleLister is the minimal interface needed to serve the calendar.
type ScheduleLister interface {
	ListSessions(ctx context.Context, in app.ListSessionsInput) ([]domain.SessionAvailability, error)
}

// ListSessions serves GET /schedule/sessions?start&end. Bounds accept
// RFC 3339 timestamps or plain YYYY-MM-DD dates.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	var in app.ListSessionsInput

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "invalid start date")
			return
		}
		in.Start = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "invalid end date")
			return
		}
		in.End = &t
	}

	sessions, err := h.schedule.ListSessions(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{
			ID:         s.ID,
			ClassType:  s.ClassType,
			StartsAt:   s.StartsAt,
			BranchID:   s.BranchID,
			BranchName: s.BranchName,
			CoachID:    emptyToNil(s.CoachID),
			CoachName:  emptyToNil(s.CoachName),
			Capacity:   s.Capacity,
			Enrolled:   s.Enrolled,
			Available:  s.Available(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type sessionResponse struct {
	ID         string    `json:"id"`
	ClassType  string    `json:"class_type"`
	StartsAt   time.Time `json:"starts_at"`
	BranchID   string    `json:"branch_id"`
	BranchName string    `json:"branch_name"`
	CoachID    *string   `json:"coach_id"`
	CoachName  *string   `json:"coach_name"`
	Capacity   int       `json:"capacity"`
	Enrolled   int       `json:"enrolled"`
	Available  int       `json:"available"`
}
