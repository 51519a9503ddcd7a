package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fitgrid/classbooking/internal/app"
	"github.com/fitgrid/classbooking/internal/clock"
	"github.com/fitgrid/classbooking/internal/domain"
	"github.com/fitgrid/classbooking/internal/testutil"
)

func TestEnroll_Postgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := app.NewEnrollmentService(NewEnrollmentRepository(pool), clock.NewFixed(now))

	memberID := testutil.InsertMember(t, ctx, pool, "Ana", "Lopez", "member")
	sessionID, _ := testutil.InsertSession(t, ctx, pool, "yoga", now.AddDate(0, 0, 1), 10, "")
	pkgID := testutil.InsertPackage(t, ctx, pool, memberID, "10-class", 10, now.AddDate(0, 1, 0))

	res, err := svc.Enroll(ctx, memberID, sessionID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if res.PackageID != pkgID {
		t.Fatalf("expected package %s, got %s", pkgID, res.PackageID)
	}
	if res.PackageRemaining != 9 {
		t.Fatalf("expected 9 remaining, got %d", res.PackageRemaining)
	}

	var remaining int
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, pkgID).Scan(&remaining); err != nil {
		t.Fatalf("query package: %v", err)
	}
	if remaining != 9 {
		t.Fatalf("expected stored remaining 9, got %d", remaining)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE session_id = $1`, sessionID).Scan(&count); err != nil {
		t.Fatalf("query enrollments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 enrollment, got %d", count)
	}

	if _, err := svc.Enroll(ctx, memberID, sessionID); !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled on retry, got %v", err)
	}
}

func TestEnroll_Postgres_FailedCheckLeavesNoState(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := app.NewEnrollmentService(NewEnrollmentRepository(pool), clock.NewFixed(now))

	memberID := testutil.InsertMember(t, ctx, pool, "Ben", "Kim", "member")
	pkgID := testutil.InsertPackage(t, ctx, pool, memberID, "10-class", 5, now.AddDate(0, 1, 0))

	// Two committed enrollments on the target day hit the daily limit; the
	// rejection must not touch the ledger.
	day := now.AddDate(0, 0, 1)
	s1, _ := testutil.InsertSession(t, ctx, pool, "yoga", day.Add(-3*time.Hour), 10, "")
	s2, _ := testutil.InsertSession(t, ctx, pool, "box", day.Add(5*time.Hour), 10, "")
	testutil.InsertEnrollment(t, ctx, pool, memberID, s1, now)
	testutil.InsertEnrollment(t, ctx, pool, memberID, s2, now)
	target, _ := testutil.InsertSession(t, ctx, pool, "spinning", day, 10, "")

	if _, err := svc.Enroll(ctx, memberID, target); !errors.Is(err, domain.ErrDailyLimitReached) {
		t.Fatalf("expected ErrDailyLimitReached, got %v", err)
	}

	var remaining int
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, pkgID).Scan(&remaining); err != nil {
		t.Fatalf("query package: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("rejected booking consumed a credit: remaining %d", remaining)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE session_id = $1`, target).Scan(&count); err != nil {
		t.Fatalf("query enrollments: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected booking left an enrollment row")
	}
}

func TestEnroll_Postgres_CapacityBoundaryUnderConcurrency(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := app.NewEnrollmentService(NewEnrollmentRepository(pool), clock.NewFixed(now))

	sessionID, _ := testutil.InsertSession(t, ctx, pool, "crossfit", now.AddDate(0, 0, 1), 1, "")

	memberA := testutil.InsertMember(t, ctx, pool, "Ana", "Lopez", "member")
	memberB := testutil.InsertMember(t, ctx, pool, "Ben", "Kim", "member")
	pkgA := testutil.InsertPackage(t, ctx, pool, memberA, "single", 1, now.AddDate(0, 1, 0))
	pkgB := testutil.InsertPackage(t, ctx, pool, memberB, "single", 1, now.AddDate(0, 1, 0))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, member := range []string{memberA, memberB} {
		wg.Add(1)
		go func(i int, member string) {
			defer wg.Done()
			_, errs[i] = svc.Enroll(ctx, member, sessionID)
		}(i, member)
	}
	wg.Wait()

	var successes, full int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrSessionFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || full != 1 {
		t.Fatalf("expected exactly one winner at the capacity boundary, got %d successes and %d full", successes, full)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE session_id = $1`, sessionID).Scan(&count); err != nil {
		t.Fatalf("query enrollments: %v", err)
	}
	if count != 1 {
		t.Fatalf("session overbooked: %d enrollments for capacity 1", count)
	}

	// The winner's package is spent, the loser's untouched.
	var remainingA, remainingB int
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, pkgA).Scan(&remainingA); err != nil {
		t.Fatalf("query package A: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, pkgB).Scan(&remainingB); err != nil {
		t.Fatalf("query package B: %v", err)
	}
	if remainingA+remainingB != 1 {
		t.Fatalf("expected exactly one credit spent, got A=%d B=%d", remainingA, remainingB)
	}
}

func TestEnroll_Postgres_ConcurrentIdenticalRequests(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := app.NewEnrollmentService(NewEnrollmentRepository(pool), clock.NewFixed(now))

	sessionID, _ := testutil.InsertSession(t, ctx, pool, "yoga", now.AddDate(0, 0, 1), 10, "")
	memberID := testutil.InsertMember(t, ctx, pool, "Cleo", "Diaz", "member")
	pkgID := testutil.InsertPackage(t, ctx, pool, memberID, "10-class", 10, now.AddDate(0, 1, 0))

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Enroll(ctx, memberID, sessionID)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrAlreadyEnrolled):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}

	// Entitlement conservation: one enrollment, one decrement.
	var remaining int
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, pkgID).Scan(&remaining); err != nil {
		t.Fatalf("query package: %v", err)
	}
	if remaining != 9 {
		t.Fatalf("expected exactly one credit spent, remaining %d", remaining)
	}
}

func TestEnroll_Postgres_DrainedPackageFallsThrough(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := app.NewEnrollmentService(NewEnrollmentRepository(pool), clock.NewFixed(now))

	// One member, two eligible packages. The earliest-expiring one has a
	// single credit, so two racing bookings both target its row first and
	// exactly one of them must fall through to the later package instead of
	// reporting the member as out of credits.
	memberID := testutil.InsertMember(t, ctx, pool, "Eli", "Sato", "member")
	soon := testutil.InsertPackage(t, ctx, pool, memberID, "single", 1, now.AddDate(0, 0, 2))
	later := testutil.InsertPackage(t, ctx, pool, memberID, "10-class", 5, now.AddDate(0, 2, 0))

	s1, _ := testutil.InsertSession(t, ctx, pool, "yoga", now.AddDate(0, 0, 1), 10, "")
	s2, _ := testutil.InsertSession(t, ctx, pool, "box", now.AddDate(0, 0, 2), 10, "")

	sessions := []string{s1, s2}
	errs := make([]error, len(sessions))
	var wg sync.WaitGroup
	for i, sessionID := range sessions {
		wg.Add(1)
		go func(i int, sessionID string) {
			defer wg.Done()
			_, errs[i] = svc.Enroll(ctx, memberID, sessionID)
		}(i, sessionID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("enroll into session %d: %v", i, err)
		}
	}

	var remainingSoon, remainingLater int
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, soon).Scan(&remainingSoon); err != nil {
		t.Fatalf("query soon package: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT remaining_count FROM entitlement_packages WHERE id = $1`, later).Scan(&remainingLater); err != nil {
		t.Fatalf("query later package: %v", err)
	}
	if remainingSoon != 0 || remainingLater != 4 {
		t.Fatalf("expected one credit from each package, got soon=%d later=%d", remainingSoon, remainingLater)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE member_id = $1`, memberID).Scan(&count); err != nil {
		t.Fatalf("query enrollments: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 enrollments, got %d", count)
	}
}

func TestSelectPackageForUpdate_Ordering(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewEnrollmentRepository(pool)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	memberID := testutil.InsertMember(t, ctx, pool, "Dao", "Nguyen", "member")
	testutil.InsertPackage(t, ctx, pool, memberID, "late", 5, now.AddDate(0, 3, 0))
	soon := testutil.InsertPackage(t, ctx, pool, memberID, "soon", 5, now.AddDate(0, 0, 2))
	testutil.InsertPackage(t, ctx, pool, memberID, "expired", 5, now.AddDate(0, 0, -1))
	testutil.InsertPackage(t, ctx, pool, memberID, "empty", 0, now.AddDate(0, 0, 1))

	pkg, err := repo.SelectPackageForUpdate(ctx, memberID, now)
	if err != nil {
		t.Fatalf("select package: %v", err)
	}
	if pkg.ID != soon {
		t.Fatalf("expected earliest-expiring eligible package %s, got %s (%s)", soon, pkg.ID, pkg.Kind)
	}

	if _, err := repo.SelectPackageForUpdate(ctx, testutil.InsertMember(t, ctx, pool, "No", "Pkg", "member"), now); !errors.Is(err, domain.ErrNoValidEntitlement) {
		t.Fatalf("expected ErrNoValidEntitlement, got %v", err)
	}
}
