package domain

import (
	"context"
	"strings"
	"time"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// ParseApplicationStatus accepts only the three known statuses (case-insensitive).
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch st := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransitionTo reports whether an admin may move an application from s to next.
// Without strict mode every edge is allowed.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus, strict bool) bool {
	if s == next || !strict {
		return true
	}
	return s == StatusPending && (next == StatusAccepted || next == StatusRejected)
}

type JobApplication struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	StudentID        uint              `gorm:"not null;uniqueIndex:idx_applications_student_offer,priority:1;index" json:"student_id"`
	JobOfferID       uint              `gorm:"not null;uniqueIndex:idx_applications_student_offer,priority:2;index" json:"job_offer_id"`
	CoverLetter      string            `gorm:"type:text;not null" json:"cover_letter"`
	Phone            string            `gorm:"size:32" json:"phone"`
	AvailabilityDate string            `gorm:"size:32" json:"availability_date"`
	ExpectedSalary   string            `gorm:"size:64" json:"expected_salary"`
	Status           ApplicationStatus `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	AppliedAt        time.Time         `gorm:"autoCreateTime" json:"applied_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (JobApplication) TableName() string { return "job_applications" }

// StudentApplication is what a student sees of one of their applications.
type StudentApplication struct {
	JobApplication
	JobTitle     string `json:"job_title"`
	JobLocation  string `json:"job_location"`
	CompanyName  string `json:"company_name"`
	CompanyEmail string `json:"company_email"`
	CompanyPhone string `json:"company_phone"`
}

// Applicant is an application seen from the offer side.
type Applicant struct {
	JobApplication
	StudentEmail     string    `json:"student_email"`
	StudentCreatedAt time.Time `json:"student_created_at"`
	Promotion        string    `json:"promotion"`
	Specialization   string    `json:"specialization"`
}

type StudentDetails struct {
	StudentProfile
	Applications []StudentApplication `json:"applications"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *JobApplication) error
	FindByID(ctx context.Context, id uint) (*JobApplication, error)
	HasApplied(ctx context.Context, studentID, offerID uint) (bool, error)
	HasAccepted(ctx context.Context, studentID uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status ApplicationStatus) error
	ListByStudent(ctx context.Context, studentID uint) ([]StudentApplication, error)
	ListByOffer(ctx context.Context, offerID uint) ([]Applicant, error)
}
