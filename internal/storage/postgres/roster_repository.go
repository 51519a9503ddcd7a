package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitgrid/classbooking/internal/domain"
)

// RosterRepository is the staff-facing read side: who is enrolled in a
// session. No locking; nothing here gates correctness.
type RosterRepository struct {
	pool *pgxpool.Pool
}

func NewRosterRepository(pool *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{pool: pool}
}

func (r *RosterRepository) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	const query = `
SELECT id, class_type, starts_at, capacity, branch_id, COALESCE(coach_id::text, '')
FROM sessions
WHERE id = $1`

	var s domain.Session
	err := r.pool.QueryRow(ctx, query, sessionID).
		Scan(&s.ID, &s.ClassType, &s.StartsAt, &s.Capacity, &s.BranchID, &s.CoachID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Session{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListRoster returns the session's enrolled members in enrollment order.
func (r *RosterRepository) ListRoster(ctx context.Context, sessionID string) ([]domain.RosterEntry, error) {
	const query = `
SELECT m.id, m.first_name, m.last_name, m.email, e.enrolled_at
FROM enrollments e
JOIN members m ON m.id = e.member_id
WHERE e.session_id = $1
ORDER BY e.enrolled_at ASC`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	var out []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		if err := rows.Scan(&entry.MemberID, &entry.FirstName, &entry.LastName, &entry.Email, &entry.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return out, nil
}
