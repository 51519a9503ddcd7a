package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitgrid/classbooking/internal/domain"
)

// ScheduleRepository serves the calendar read path. It runs outside any
// transaction: bounded staleness is fine here since availability only feeds
// display, never the commit path.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// ListSessions returns every session with starts_at in [from, to), joined
// with branch and coach display names and the current enrolled count, ordered
// by start time.
func (r *ScheduleRepository) ListSessions(ctx context.Context, from, to time.Time) ([]domain.SessionAvailability, error) {
	const query = `
SELECT
	s.id,
	s.class_type,
	s.starts_at,
	s.capacity,
	s.branch_id,
	b.name,
	COALESCE(s.coach_id::text, ''),
	COALESCE(m.first_name || ' ' || m.last_name, ''),
	(SELECT COUNT(*) FROM enrollments e WHERE e.session_id = s.id)
FROM sessions s
JOIN branches b ON b.id = s.branch_id
LEFT JOIN members m ON m.id = s.coach_id
WHERE s.starts_at >= $1 AND s.starts_at < $2
ORDER BY s.starts_at ASC`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.SessionAvailability
	for rows.Next() {
		var s domain.SessionAvailability
		if err := rows.Scan(
			&s.ID,
			&s.ClassType,
			&s.StartsAt,
			&s.Capacity,
			&s.BranchID,
			&s.BranchName,
			&s.CoachID,
			&s.CoachName,
			&s.Enrolled,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}
