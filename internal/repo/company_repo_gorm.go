package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"job-portal/internal/domain"
)

type CompanyRepo struct{ db *gorm.DB }

func NewCompanyRepo(db *gorm.DB) *CompanyRepo { return &CompanyRepo{db: db} }

var _ domain.CompanyRepository = (*CompanyRepo)(nil)

func (r *CompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrCompanyEmailTaken
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Where("id = ?", c.ID).
		Select("name", "sector", "location", "email", "phone", "avatar").
		Updates(c).Error
	if err != nil {
		if isDupKey(err) {
			return domain.ErrCompanyEmailTaken
		}
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

func (r *CompanyRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Company{}, id).Error; err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return nil
}

func (r *CompanyRepo) FindByID(ctx context.Context, id uint) (*domain.Company, error) {
	var c domain.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CompanyRepo) List(ctx context.Context) ([]domain.Company, error) {
	var cs []domain.Company
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&cs).Error
	return cs, err
}

func (r *CompanyRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Count(&n).Error
	return n, err
}

func (r *CompanyRepo) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Company{}).Where("email = ?", email)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

// CountOffers counts archived offers too.
func (r *CompanyRepo) CountOffers(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.JobOffer{}).Where("company_id = ?", id).Count(&n).Error
	return n, err
}
