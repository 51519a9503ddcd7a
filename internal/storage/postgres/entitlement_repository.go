package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitgrid/classbooking/internal/domain"
)

// EntitlementRepository serves the ledger's read paths: a member's own
// packages, and the manager membership overview. Consumption lives on
// EnrollmentRepository so it shares the booking transaction.
type EntitlementRepository struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepository(pool *pgxpool.Pool) *EntitlementRepository {
	return &EntitlementRepository{pool: pool}
}

func (r *EntitlementRepository) ListMemberPackages(ctx context.Context, memberID string) ([]domain.EntitlementPackage, error) {
	const query = `
SELECT id, member_id, kind, remaining_count, expires_on
FROM entitlement_packages
WHERE member_id = $1
ORDER BY expires_on ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list member packages: %w", err)
	}
	defer rows.Close()

	var out []domain.EntitlementPackage
	for rows.Next() {
		var p domain.EntitlementPackage
		if err := rows.Scan(&p.ID, &p.MemberID, &p.Kind, &p.RemainingCount, &p.ExpiresOn); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list member packages: %w", err)
	}
	return out, nil
}

func (r *EntitlementRepository) ListMemberships(ctx context.Context) ([]domain.MembershipSummary, error) {
	const query = `
SELECT m.id, m.first_name || ' ' || m.last_name, p.kind, p.remaining_count, p.expires_on
FROM entitlement_packages p
JOIN members m ON m.id = p.member_id
ORDER BY p.expires_on ASC, p.id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []domain.MembershipSummary
	for rows.Next() {
		var s domain.MembershipSummary
		if err := rows.Scan(&s.MemberID, &s.MemberName, &s.Kind, &s.RemainingCount, &s.ExpiresOn); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}
