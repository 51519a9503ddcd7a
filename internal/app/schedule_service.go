package app

import (
	"context"
	"time"

	"github.com/fitgrid/classbooking/internal/clock"
	"github.com/fitgrid/classbooking/internal/domain"
)

type ScheduleRepository interface {
	ListSessions(ctx context.Context, from, to time.Time) ([]domain.SessionAvailability, error)
}

// ScheduleService is the availability projection: sessions in a range with
// their derived seat counts. Read-only, no locking.
type ScheduleService struct {
	repo  ScheduleRepository
	clock clock.Clock
}

// defaultScheduleWindow is how far ahead the calendar looks when the caller
// gives no end bound.
const defaultScheduleWindow = 60 * 24 * time.Hour

func NewScheduleService(repo ScheduleRepository, clk clock.Clock) *ScheduleService {
	return &ScheduleService{
		repo:  repo,
		clock: clk,
	}
}

type ListSessionsInput struct {
	Start *time.Time
	End   *time.Time
}

// ListSessions returns sessions with start time in [start, end), ordered by
// start ascending. Missing bounds default to now and start+60d.
func (s *ScheduleService) ListSessions(ctx context.Context, in ListSessionsInput) ([]domain.SessionAvailability, error) {
	from := s.clock.Now()
	if in.Start != nil {
		from = *in.Start
	}
	to := from.Add(defaultScheduleWindow)
	if in.End != nil {
		to = *in.End
	}
	return s.repo.ListSessions(ctx, from, to)
}
