package app

import (
	"context"

	"github.com/fitgrid/classbooking/internal/auth"
	"github.com/fitgrid/classbooking/internal/domain"
)

type RosterRepository interface {
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	ListRoster(ctx context.Context, sessionID string) ([]domain.RosterEntry, error)
}

// RosterService lists who is enrolled in a session, for staff. Coaches may
// only see sessions assigned to them; managers may see any.
type RosterService struct {
	repo RosterRepository
}

func NewRosterService(repo RosterRepository) *RosterService {
	return &RosterService{repo: repo}
}

// ListRoster returns the session's enrollments in enrollment order, with
// emails masked. ErrForbidden when a coach asks about another coach's
// session.
func (s *RosterService) ListRoster(ctx context.Context, caller auth.Identity, sessionID string) ([]domain.RosterEntry, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if caller.Role == auth.RoleCoach && sess.CoachID != caller.MemberID {
		return nil, domain.ErrForbidden
	}

	entries, err := s.repo.ListRoster(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Email = domain.MaskEmail(entries[i].Email)
	}
	return entries, nil
}
