package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitgrid/classbooking/internal/domain"
)

// EnrollmentRepository is the write side of the booking path. All mutating
// methods are meant to run inside a WithTx callback; the session row lock
// taken by GetSessionForUpdate serializes the capacity check and the insert.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

func (r *EnrollmentRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetSessionForUpdate loads a session and locks its row for the duration of
// the surrounding transaction. Concurrent bookings for the same session queue
// on this lock, which makes the later count-and-insert atomic.
func (r *EnrollmentRepository) GetSessionForUpdate(ctx context.Context, sessionID string) (domain.Session, error) {
	const query = `
SELECT id, class_type, starts_at, capacity, branch_id, COALESCE(coach_id::text, '')
FROM sessions
WHERE id = $1
FOR UPDATE`

	var s domain.Session
	err := r.queryRow(ctx, query, sessionID).
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

func (r *EnrollmentRepository) CountEnrollments(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE session_id = $1`

	var n int
	if err := r.queryRow(ctx, query, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

func (r *EnrollmentRepository) HasEnrollment(ctx context.Context, memberID, sessionID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE member_id = $1 AND session_id = $2)`

	var exists bool
	err := r.queryRow(ctx, query, memberID, sessionID).Scan(&exists)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// SelectPackageForUpdate picks and locks the member's eligible package that
// expires soonest (id breaks ties). Returns ErrNoValidEntitlement when the
// member has no package with credits left that is still valid on day, whose
// calendar date is compared against expires_on as a plain date.
//
// Candidate ids are read first and then locked one at a time by key. A
// single `ORDER BY ... LIMIT 1 FOR UPDATE` would be wrong here: under READ
// COMMITTED, when the scanned row is drained while we wait on its lock, the
// post-lock recheck discards it and the statement comes back empty instead
// of moving on to the member's next package.
func (r *EnrollmentRepository) SelectPackageForUpdate(ctx context.Context, memberID string, day time.Time) (domain.EntitlementPackage, error) {
	const lockQuery = `
SELECT id, member_id, kind, remaining_count, expires_on
FROM entitlement_packages
WHERE id = $1 AND remaining_count > 0 AND expires_on >= $2::date
FOR UPDATE`

	date := day.Format("2006-01-02")
	for {
		ids, err := r.listEligiblePackageIDs(ctx, memberID, date)
		if err != nil {
			return domain.EntitlementPackage{}, err
		}
		if len(ids) == 0 {
			return domain.EntitlementPackage{}, domain.ErrNoValidEntitlement
		}

		for _, id := range ids {
			var p domain.EntitlementPackage
			err := r.queryRow(ctx, lockQuery, id, date).
				Scan(&p.ID, &p.MemberID, &p.Kind, &p.RemainingCount, &p.ExpiresOn)
			if err == pgx.ErrNoRows {
				// Drained by a concurrent booking while we waited on
				// its lock; fall through to the next candidate.
				continue
			}
			if err != nil {
				return domain.EntitlementPackage{}, fmt.Errorf("lock package: %w", err)
			}
			return p, nil
		}
		// Every candidate from the snapshot was consumed underneath us.
		// Re-read: the next pass sees fresh committed state and either
		// finds a package or proves none is left.
	}
}

func (r *EnrollmentRepository) listEligiblePackageIDs(ctx context.Context, memberID, date string) ([]string, error) {
	const query = `
SELECT id
FROM entitlement_packages
WHERE member_id = $1 AND remaining_count > 0 AND expires_on >= $2::date
ORDER BY expires_on ASC, id ASC`

	rows, err := r.query(ctx, query, memberID, date)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list eligible packages: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan package id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list eligible packages: %w", err)
	}
	return ids, nil
}

// ListMemberSessionStarts returns the start times of every session the member
// is enrolled in, for the schedule policy checks.
func (r *EnrollmentRepository) ListMemberSessionStarts(ctx context.Context, memberID string) ([]time.Time, error) {
	const query = `
SELECT s.starts_at
FROM enrollments e
JOIN sessions s ON s.id = e.session_id
WHERE e.member_id = $1`

	rows, err := r.query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list member session starts: %w", err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan session start: %w", err)
		}
		starts = append(starts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list member session starts: %w", err)
	}
	return starts, nil
}

// ConsumePackage spends one credit. The remaining_count guard repeats the
// selection predicate so a decrement below zero is impossible even if the
// package row changed underneath us.
func (r *EnrollmentRepository) ConsumePackage(ctx context.Context, packageID string) error {
	const stmt = `
UPDATE entitlement_packages
SET remaining_count = remaining_count - 1
WHERE id = $1 AND remaining_count > 0`

	tag, err := r.exec(ctx, stmt, packageID)
	if err != nil {
		return fmt.Errorf("consume package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoValidEntitlement
	}
	return nil
}

func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, e domain.Enrollment) error {
	const stmt = `
INSERT INTO enrollments (member_id, session_id, enrolled_at)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, e.MemberID, e.SessionID, e.EnrolledAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyEnrolled
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *EnrollmentRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *EnrollmentRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
