package app

import (
	"context"
	"time"

	"github.com/fitgrid/classbooking/internal/clock"
	"github.com/fitgrid/classbooking/internal/domain"
)

type EnrollmentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetSessionForUpdate(ctx context.Context, sessionID string) (domain.Session, error)
	HasEnrollment(ctx context.Context, memberID, sessionID string) (bool, error)
	CountEnrollments(ctx context.Context, sessionID string) (int, error)
	SelectPackageForUpdate(ctx context.Context, memberID string, day time.Time) (domain.EntitlementPackage, error)
	ListMemberSessionStarts(ctx context.Context, memberID string) ([]time.Time, error)
	ConsumePackage(ctx context.Context, packageID string) error
	CreateEnrollment(ctx context.Context, e domain.Enrollment) error
}

// EnrollmentService is the booking engine. Every Enroll call runs its checks
// and writes as one transaction; the session row lock taken up front makes
// the capacity check and the insert a single atomic unit across concurrent
// callers, and any failed check rolls the whole attempt back.
type EnrollmentService struct {
	repo   EnrollmentRepository
	clock  clock.Clock
	policy domain.SchedulePolicy
}

func NewEnrollmentService(repo EnrollmentRepository, clk clock.Clock, opts ...EnrollmentServiceOption) *EnrollmentService {
	svc := &EnrollmentService{
		repo:   repo,
		clock:  clk,
		policy: domain.DefaultSchedulePolicy(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type EnrollmentServiceOption func(*EnrollmentService)

// WithSchedulePolicy overrides the default daily-limit/separation policy.
func WithSchedulePolicy(p domain.SchedulePolicy) EnrollmentServiceOption {
	return func(s *EnrollmentService) {
		s.policy = p
	}
}

type EnrollResult struct {
	Enrollment domain.Enrollment
	// PackageID is the entitlement package the enrollment was charged to.
	PackageID string
	// PackageRemaining is the package's credit count after the charge.
	PackageRemaining int
}

// Enroll books memberID into sessionID. Checks run in a fixed order and the
// first failure wins: session exists, starts in the future, no duplicate,
// seats left, an eligible package, then the schedule policy. On success one
// credit is consumed and the enrollment inserted, atomically.
func (s *EnrollmentService) Enroll(ctx context.Context, memberID, sessionID string) (EnrollResult, error) {
	now := s.clock.Now()
	var result EnrollResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		sess, err := s.repo.GetSessionForUpdate(txCtx, sessionID)
		if err != nil {
			return err
		}
		if !sess.StartsAt.After(now) {
			return domain.ErrPastSession
		}

		enrolled, err := s.repo.HasEnrollment(txCtx, memberID, sessionID)
		if err != nil {
			return err
		}
		if enrolled {
			return domain.ErrAlreadyEnrolled
		}

		count, err := s.repo.CountEnrollments(txCtx, sessionID)
		if err != nil {
			return err
		}
		if count >= sess.Capacity {
			return domain.ErrSessionFull
		}

		// Package validity is judged against the booking day in the
		// policy's location, not against the raw instant, so the cutoff
		// does not shift with the database server's timezone.
		pkg, err := s.repo.SelectPackageForUpdate(txCtx, memberID, s.policy.BookingDay(now))
		if err != nil {
			return err
		}

		starts, err := s.repo.ListMemberSessionStarts(txCtx, memberID)
		if err != nil {
			return err
		}
		if err := s.policy.Check(sess.StartsAt, starts); err != nil {
			return err
		}

		if err := s.repo.ConsumePackage(txCtx, pkg.ID); err != nil {
			return err
		}

		enrollment := domain.Enrollment{
			MemberID:   memberID,
			SessionID:  sessionID,
			EnrolledAt: now,
		}
		if err := s.repo.CreateEnrollment(txCtx, enrollment); err != nil {
			return err
		}

		result = EnrollResult{
			Enrollment:       enrollment,
			PackageID:        pkg.ID,
			PackageRemaining: pkg.RemainingCount - 1,
		}
		return nil
	})
	if err != nil {
		return EnrollResult{}, err
	}
	return result, nil
}
