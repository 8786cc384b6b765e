package domain

import (
	"context"
	"time"
)

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Sector    string    `gorm:"size:128;not null" json:"sector"`
	Location  string    `gorm:"size:128" json:"location"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Avatar    string    `gorm:"size:4" json:"avatar"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

type JobOffer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:191;not null" json:"title"`
	CompanyID    uint      `gorm:"index;not null" json:"company_id"`
	ContractType string    `gorm:"size:64;not null;index" json:"contract_type"`
	Location     string    `gorm:"size:128" json:"location"`
	Description  string    `gorm:"type:text" json:"description"`
	Skills       string    `gorm:"type:text" json:"skills"`
	Deleted      bool      `gorm:"not null;default:false;index" json:"deleted"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (JobOffer) TableName() string { return "job_offers" }

// OfferSummary is an offer row joined with its company name.
type OfferSummary struct {
	JobOffer
	CompanyName string `json:"company_name"`
}

// OfferDetail is an offer with the full company card.
type OfferDetail struct {
	JobOffer
	CompanyName     string `json:"company_name"`
	CompanySector   string `json:"company_sector"`
	CompanyLocation string `json:"company_location"`
	CompanyEmail    string `json:"company_email"`
	CompanyPhone    string `json:"company_phone"`
	CompanyAvatar   string `json:"company_avatar"`
}

// OfferFilter predicates are optional and combine with AND.
type OfferFilter struct {
	Query        string
	CompanyID    uint
	ContractType string
}

type CompanyRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type OfferStats struct {
	Active   int64 `json:"active_offers"`
	Archived int64 `json:"archived_offers"`
}

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Company, error)
	List(ctx context.Context) ([]Company, error)
	Count(ctx context.Context) (int64, error)
	// EmailExists ignores the company with id excludeID (0 disables the exclusion).
	EmailExists(ctx context.Context, email string, excludeID uint) (bool, error)
	CountOffers(ctx context.Context, id uint) (int64, error)
}

type JobOfferRepository interface {
	Create(ctx context.Context, o *JobOffer) error
	FindActive(ctx context.Context, id uint) (*OfferDetail, error)
	IsActive(ctx context.Context, id uint) (bool, error)
	// SetArchived reports false when no offer has that id.
	SetArchived(ctx context.Context, id uint, archived bool) (bool, error)
	Search(ctx context.Context, f OfferFilter) ([]OfferSummary, error)
	Recent(ctx context.Context, limit int) ([]OfferSummary, error)
	Archived(ctx context.Context) ([]OfferSummary, error)
	Stats(ctx context.Context) (OfferStats, error)
	CompaniesWithOffers(ctx context.Context) ([]CompanyRef, error)
	ContractTypes(ctx context.Context) ([]string, error)
}
