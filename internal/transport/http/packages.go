package http

import (
	"context"
	"net/http"

	"github.com/fitgrid/classbooking/internal/auth"
	"github.com/fitgrid/classbooking/internal/domain"
)

// PackageLister is the minimal interface needed for the ledger read paths.
type PackageLister interface {
	ListMemberPackages(ctx context.Context, memberID string) ([]domain.EntitlementPackage, error)
	ListMemberships(ctx context.Context) ([]domain.MembershipSummary, error)
}

// MyPackages serves GET /me/packages: the caller's own entitlement packages.
func (h *Handler) MyPackages(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity")
		return
	}

	packages, err := h.entitlements.ListMemberPackages(r.Context(), id.MemberID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]packageResponse, 0, len(packages))
	for _, p := range packages {
		out = append(out, packageResponse{
			ID:             p.ID,
			Kind:           p.Kind,
			RemainingCount: p.RemainingCount,
			ExpiresOn:      p.ExpiresOn.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Memberships serves GET /admin/memberships: every package with its owner,
// ordered soonest expiry first. Manager only.
func (h *Handler) Memberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.entitlements.ListMemberships(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]membershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, membershipResponse{
			MemberID:       m.MemberID,
			MemberName:     m.MemberName,
			Kind:           m.Kind,
			RemainingCount: m.RemainingCount,
			ExpiresOn:      m.ExpiresOn.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type packageResponse struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	RemainingCount int    `json:"remaining_count"`
	ExpiresOn      string `json:"expires_on"`
}

type membershipResponse struct {
	MemberID       string `json:"member_id"`
	MemberName     string `json:"member_name"`
	Kind           string `json:"kind"`
	RemainingCount int    `json:"remaining_count"`
	ExpiresOn      string `json:"expires_on"`
}
