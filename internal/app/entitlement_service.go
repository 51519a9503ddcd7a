package app

import (
	"context"

	"github.com/fitgrid/classbooking/internal/domain"
)

type EntitlementRepository interface {
	ListMemberPackages(ctx context.Context, memberID string) ([]domain.EntitlementPackage, error)
	ListMemberships(ctx context.Context) ([]domain.MembershipSummary, error)
}

// EntitlementService exposes the ledger's read paths. Consumption happens
// inside the enrollment transaction, never here.
type EntitlementService struct {
	repo EntitlementRepository
}

func NewEntitlementService(repo EntitlementRepository) *EntitlementService {
	return &EntitlementService{repo: repo}
}

// ListMemberPackages returns the member's own packages, soonest expiry first.
func (s *EntitlementService) ListMemberPackages(ctx context.Context, memberID string) ([]domain.EntitlementPackage, error) {
	return s.repo.ListMemberPackages(ctx, memberID)
}

// ListMemberships returns every package with its owner's name, for the
// manager overview.
func (s *EntitlementService) ListMemberships(ctx context.Context) ([]domain.MembershipSummary, error) {
	return s.repo.ListMemberships(ctx)
}
