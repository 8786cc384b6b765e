package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"job-portal/internal/domain"
)

type OfferRepo struct{ db *gorm.DB }

func NewOfferRepo(db *gorm.DB) *OfferRepo { return &OfferRepo{db: db} }

var _ domain.JobOfferRepository = (*OfferRepo)(nil)

func (r *OfferRepo) Create(ctx context.Context, o *domain.JobOffer) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

func (r *OfferRepo) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("job_offers AS o").
		Select("o.*, c.name AS company_name").
		Joins("JOIN companies c ON c.id = o.company_id")
}

func (r *OfferRepo) FindActive(ctx context.Context, id uint) (*domain.OfferDetail, error) {
	var rows []domain.OfferDetail
	err := r.db.WithContext(ctx).
		Table("job_offers AS o").
		Select(`o.*, c.name AS company_name, c.sector AS company_sector,
			c.location AS company_location, c.email AS company_email,
			c.phone AS company_phone, c.avatar AS company_avatar`).
		Joins("JOIN companies c ON c.id = o.company_id").
		Where("o.id = ? AND o.deleted = ?", id, false).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *OfferRepo) IsActive(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.JobOffer{}).
		Where("id = ? AND deleted = ?", id, false).Count(&n).Error
	return n > 0, err
}

func (r *OfferRepo) SetArchived(ctx context.Context, id uint, archived bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.JobOffer{}).Where("id = ?", id).Update("deleted", archived)
	if res.Error != nil {
		return false, fmt.Errorf("set archived: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// mysql reports 0 rows when the value did not change
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.JobOffer{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *OfferRepo) Search(ctx context.Context, f domain.OfferFilter) ([]domain.OfferSummary, error) {
	q := r.summaries(ctx).Where("o.deleted = ?", false)
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(o.title) LIKE ? OR LOWER(o.description) LIKE ? OR LOWER(c.name) LIKE ?)", like, like, like)
	}
	if f.CompanyID > 0 {
		q = q.Where("o.company_id = ?", f.CompanyID)
	}
	if ct := strings.TrimSpace(f.ContractType); ct != "" {
		q = q.Where("o.contract_type = ?", ct)
	}
	var out []domain.OfferSummary
	err := q.Order("o.created_at DESC, o.id DESC").Scan(&out).Error
	return out, err
}

func (r *OfferRepo) Recent(ctx context.Context, limit int) ([]domain.OfferSummary, error) {
	var out []domain.OfferSummary
	err := r.summaries(ctx).Where("o.deleted = ?", false).
		Order("o.created_at DESC, o.id DESC").Limit(limit).Scan(&out).Error
	return out, err
}

func (r *OfferRepo) Archived(ctx context.Context) ([]domain.OfferSummary, error) {
	var out []domain.OfferSummary
	err := r.summaries(ctx).Where("o.deleted = ?", true).
		Order("o.updated_at DESC, o.id DESC").Scan(&out).Error
	return out, err
}

func (r *OfferRepo) Stats(ctx context.Context) (domain.OfferStats, error) {
	var st domain.OfferStats
	m := r.db.WithContext(ctx).Model(&domain.JobOffer{})
	if err := m.Where("deleted = ?", false).Count(&st.Active).Error; err != nil {
		return st, err
	}
	err := r.db.WithContext(ctx).Model(&domain.JobOffer{}).Where("deleted = ?", true).Count(&st.Archived).Error
	return st, err
}

func (r *OfferRepo) CompaniesWithOffers(ctx context.Context) ([]domain.CompanyRef, error) {
	var out []domain.CompanyRef
	err := r.db.WithContext(ctx).
		Table("companies AS c").
		Distinct("c.id", "c.name").
		Joins("JOIN job_offers o ON o.company_id = c.id").
		Where("o.deleted = ?", false).
		Order("c.name ASC").
		Scan(&out).Error
	return out, err
}

func (r *OfferRepo) ContractTypes(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&domain.JobOffer{}).
		Where("deleted = ?", false).
		Distinct().
		Order("contract_type ASC").
		Pluck("contract_type", &out).Error
	return out, err
}
