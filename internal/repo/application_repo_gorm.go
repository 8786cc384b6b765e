package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"job-portal/internal/domain"
)

type ApplicationRepo struct{ db *gorm.DB }

func NewApplicationRepo(db *gorm.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

var _ domain.ApplicationRepository = (*ApplicationRepo)(nil)

// Create maps a hit on the (student, offer) unique index to ErrAlreadyApplied.
func (r *ApplicationRepo) Create(ctx context.Context, a *domain.JobApplication) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrAlreadyApplied
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id uint) (*domain.JobApplication, error) {
	var a domain.JobApplication
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *ApplicationRepo) HasApplied(ctx context.Context, studentID, offerID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.JobApplication{}).
		Where("student_id = ? AND job_offer_id = ?", studentID, offerID).Count(&n).Error
	return n > 0, err
}

func (r *ApplicationRepo) HasAccepted(ctx context.Context, studentID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.JobApplication{}).
		Where("student_id = ? AND status = ?", studentID, domain.StatusAccepted).Count(&n).Error
	return n > 0, err
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uint, status domain.ApplicationStatus) error {
	err := r.db.WithContext(ctx).Model(&domain.JobApplication{}).
		Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (r *ApplicationRepo) ListByStudent(ctx context.Context, studentID uint) ([]domain.StudentApplication, error) {
	var out []domain.StudentApplication
	err := r.db.WithContext(ctx).
		Table("job_applications AS a").
		Select(`a.*, o.title AS job_title, o.location AS job_location,
			c.name AS company_name, c.email AS company_email, c.phone AS company_phone`).
		Joins("JOIN job_offers o ON o.id = a.job_offer_id").
		Joins("JOIN companies c ON c.id = o.company_id").
		Where("a.student_id = ?", studentID).
		Order("a.applied_at DESC, a.id DESC").
		Scan(&out).Error
	return out, err
}

func (r *ApplicationRepo) ListByOffer(ctx context.Context, offerID uint) ([]domain.Applicant, error) {
	var out []domain.Applicant
	err := r.db.WithContext(ctx).
		Table("job_applications AS a").
		Select(`a.*, u.email AS student_email, u.created_at AS student_created_at,
			COALESCE(s.promotion, '') AS promotion, COALESCE(s.specialization, '') AS specialization`).
		Joins("JOIN users u ON u.id = a.student_id").
		Joins("LEFT JOIN students s ON s.user_id = u.id").
		Where("a.job_offer_id = ?", offerID).
		Order("a.applied_at DESC, a.id DESC").
		Scan(&out).Error
	return out, err
}
