package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"job-portal/internal/domain"
)

type ApplyInput struct {
	OfferID          uint   `form:"job_offer_id"`
	CoverLetter      string `form:"cover_letter"`
	Phone            string `form:"phone"`
	AvailabilityDate string `form:"availability_date"`
	ExpectedSalary   string `form:"expected_salary"`
}

type ApplicationService struct {
	apps   domain.ApplicationRepository
	offers domain.JobOfferRepository
	users  domain.UserRepository
	// strict limits status changes to PENDING -> ACCEPTED | REJECTED.
	strict bool
	log    *zap.Logger
}

func NewApplicationService(
	apps domain.ApplicationRepository,
	offers domain.JobOfferRepository,
	users domain.UserRepository,
	strict bool,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{apps: apps, offers: offers, users: users, strict: strict, log: log}
}

// Apply checks, in this order: the offer is active, the student has not
// applied to it, the student holds no accepted application, the cover letter
// is not blank. The first failing check decides the error.
func (s *ApplicationService) Apply(ctx context.Context, studentID uint, in ApplyInput) (*domain.JobApplication, error) {
	a, err := s.apply(ctx, studentID, in)
	outcome := "submitted"
	if err != nil {
		outcome = "refused"
		if !domain.IsBusiness(err) {
			outcome = "error"
		}
	}
	applicationsTotal.WithLabelValues(outcome).Inc()
	return a, err
}

func (s *ApplicationService) apply(ctx context.Context, studentID uint, in ApplyInput) (*domain.JobApplication, error) {
	if in.OfferID == 0 {
		return nil, domain.ErrOfferUnavailable
	}
	active, err := s.offers.IsActive(ctx, in.OfferID)
	if err != nil {
		return nil, fmt.Errorf("check offer: %w", err)
	}
	if !active {
		return nil, domain.ErrOfferUnavailable
	}
	applied, err := s.apps.HasApplied(ctx, studentID, in.OfferID)
	if err != nil {
		return nil, fmt.Errorf("check applied: %w", err)
	}
	if applied {
		return nil, domain.ErrAlreadyApplied
	}
	locked, err := s.apps.HasAccepted(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("check accepted: %w", err)
	}
	if locked {
		return nil, domain.ErrAcceptedApplicationLock
	}
	letter := strings.TrimSpace(in.CoverLetter)
	if letter == "" {
		return nil, domain.ErrCoverLetterRequired
	}

	a := &domain.JobApplication{
		StudentID:        studentID,
		JobOfferID:       in.OfferID,
		CoverLetter:      letter,
		Phone:            strings.TrimSpace(in.Phone),
		AvailabilityDate: strings.TrimSpace(in.AvailabilityDate),
		ExpectedSalary:   strings.TrimSpace(in.ExpectedSalary),
		Status:           domain.StatusPending,
	}
	if err := s.apps.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("application submitted",
		zap.Uint("application_id", a.ID), zap.Uint("student_id", studentID), zap.Uint("offer_id", in.OfferID))
	return a, nil
}

// UpdateStatus sets the status of an application from raw admin input.
// Setting the current status again succeeds without a write.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id uint, raw string) (*domain.JobApplication, error) {
	next, err := domain.ParseApplicationStatus(raw)
	if err != nil {
		return nil, err
	}
	a, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	if a == nil {
		return nil, domain.ErrApplicationNotFound
	}
	if a.Status == next {
		return a, nil
	}
	if !a.Status.CanTransitionTo(next, s.strict) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.apps.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	statusChangesTotal.WithLabelValues(string(next)).Inc()
	s.log.Info("application status changed",
		zap.Uint("application_id", id), zap.String("from", string(a.Status)), zap.String("to", string(next)))
	a.Status = next
	return a, nil
}

func (s *ApplicationService) ListForStudent(ctx context.Context, studentID uint) ([]domain.StudentApplication, error) {
	out, err := s.apps.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if out == nil {
		out = []domain.StudentApplication{}
	}
	return out, nil
}

// ApplicantsForOffer returns an active offer and everyone who applied to it.
func (s *ApplicationService) ApplicantsForOffer(ctx context.Context, offerID uint) (*domain.OfferDetail, []domain.Applicant, error) {
	o, err := s.offers.FindActive(ctx, offerID)
	if err != nil {
		return nil, nil, fmt.Errorf("find offer: %w", err)
	}
	if o == nil {
		return nil, nil, domain.ErrOfferNotFound
	}
	list, err := s.apps.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list applicants: %w", err)
	}
	return o, list, nil
}

func (s *ApplicationService) StudentDetails(ctx context.Context, studentID uint) (*domain.StudentDetails, error) {
	p, err := s.users.FindStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	if p == nil {
		return nil, domain.ErrStudentNotFound
	}
	apps, err := s.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &domain.StudentDetails{StudentProfile: *p, Applications: apps}, nil
}

func (s *ApplicationService) HasApplied(ctx context.Context, studentID, offerID uint) (bool, error) {
	return s.apps.HasApplied(ctx, studentID, offerID)
}

func (s *ApplicationService) HasAcceptedApplication(ctx context.Context, studentID uint) (bool, error) {
	return s.apps.HasAccepted(ctx, studentID)
}
