package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"job-portal/internal/core/auth"
	"job-portal/internal/core/cache"
	"job-portal/internal/domain"
)

type CompanyInput struct {
	ID       uint   `form:"id"`
	Name     string `form:"name" validate:"required"`
	Sector   string `form:"sector" validate:"required"`
	Location string `form:"location"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone"`
}

func (in *CompanyInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Sector = strings.TrimSpace(in.Sector)
	in.Location = strings.TrimSpace(in.Location)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

type OfferInput struct {
	Title        string `form:"title" validate:"required"`
	CompanyID    uint   `form:"company_id" validate:"required"`
	ContractType string `form:"contract_type" validate:"required"`
	Location     string `form:"location"`
	Description  string `form:"description"`
	Skills       string `form:"skills"`
}

// Facets are the filter choices offered next to a search: only companies and
// contract types that have at least one active offer.
type Facets struct {
	Companies     []domain.CompanyRef `json:"companies"`
	ContractTypes []string            `json:"contract_types"`
}

type DashboardStats struct {
	ActiveOffers   int64 `json:"active_offers"`
	ArchivedOffers int64 `json:"archived_offers"`
	Companies      int64 `json:"companies"`
	Students       int64 `json:"students"`
}

type Dashboard struct {
	Stats          DashboardStats
	RecentOffers   []domain.OfferSummary
	ArchivedOffers []domain.OfferSummary
	Companies      []domain.Company
	Facets         Facets
	Students       []domain.StudentProfile
}

const facetsKey = "offer-facets"

type CatalogService struct {
	companies domain.CompanyRepository
	offers    domain.JobOfferRepository
	users     domain.UserRepository
	cache     *cache.Cache
	facetsTTL time.Duration
	log       *zap.Logger
}

func NewCatalogService(
	companies domain.CompanyRepository,
	offers domain.JobOfferRepository,
	users domain.UserRepository,
	c *cache.Cache,
	facetsTTL time.Duration,
	log *zap.Logger,
) *CatalogService {
	if c == nil {
		c = &cache.Cache{}
	}
	return &CatalogService{companies: companies, offers: offers, users: users, cache: c, facetsTTL: facetsTTL, log: log}
}

// Avatar is the upper-cased initials of the first two words of name.
func Avatar(name string) string {
	var b strings.Builder
	for i, w := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r := []rune(w)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func (s *CatalogService) invalidateFacets(ctx context.Context) {
	if err := s.cache.Delete(ctx, facetsKey); err != nil {
		s.log.Warn("facets cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) checkCompany(ctx context.Context, in *CompanyInput, excludeID uint) error {
	in.trim()
	if msgs := auth.Validate(in); len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	taken, err := s.companies.EmailExists(ctx, in.Email, excludeID)
	if err != nil {
		return fmt.Errorf("check company email: %w", err)
	}
	if taken {
		return domain.ErrCompanyEmailTaken
	}
	return nil
}

func (s *CatalogService) CreateCompany(ctx context.Context, in CompanyInput) (*domain.Company, error) {
	if err := s.checkCompany(ctx, &in, 0); err != nil {
		return nil, err
	}
	c := &domain.Company{
		Name: in.Name, Sector: in.Sector, Location: in.Location,
		Email: in.Email, Phone: in.Phone, Avatar: Avatar(in.Name),
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("company created", zap.Uint("company_id", c.ID))
	return c, nil
}

func (s *CatalogService) UpdateCompany(ctx context.Context, in CompanyInput) (*domain.Company, error) {
	c, err := s.companies.FindByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	if c == nil {
		return nil, domain.ErrCompanyNotFound
	}
	if err := s.checkCompany(ctx, &in, c.ID); err != nil {
		return nil, err
	}
	c.Name, c.Sector, c.Location = in.Name, in.Sector, in.Location
	c.Email, c.Phone, c.Avatar = in.Email, in.Phone, Avatar(in.Name)
	if err := s.companies.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateFacets(ctx)
	s.log.Info("company updated", zap.Uint("company_id", c.ID))
	return c, nil
}

// DeleteCompany refuses while any offer, archived or not, points at the company.
func (s *CatalogService) DeleteCompany(ctx context.Context, id uint) error {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find company: %w", err)
	}
	if c == nil {
		return domain.ErrCompanyNotFound
	}
	n, err := s.companies.CountOffers(ctx, id)
	if err != nil {
		return fmt.Errorf("count offers: %w", err)
	}
	if n > 0 {
		return domain.ErrCompanyHasOffers
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateFacets(ctx)
	s.log.Info("company deleted", zap.Uint("company_id", id))
	return nil
}

func (s *CatalogService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	return s.companies.List(ctx)
}

func (s *CatalogService) CreateOffer(ctx context.Context, in OfferInput) (*domain.JobOffer, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ContractType = strings.TrimSpace(in.ContractType)
	if msgs := auth.Validate(in); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}
	c, err := s.companies.FindByID(ctx, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	if c == nil {
		return nil, domain.ErrCompanyNotFound
	}
	o := &domain.JobOffer{
		Title:        in.Title,
		CompanyID:    c.ID,
		ContractType: in.ContractType,
		Location:     strings.TrimSpace(in.Location),
		Description:  strings.TrimSpace(in.Description),
		Skills:       strings.TrimSpace(in.Skills),
	}
	if err := s.offers.Create(ctx, o); err != nil {
		return nil, err
	}
	s.invalidateFacets(ctx)
	s.log.Info("offer created", zap.Uint("offer_id", o.ID), zap.Uint("company_id", c.ID))
	return o, nil
}

func (s *CatalogService) setArchived(ctx context.Context, id uint, archived bool) error {
	ok, err := s.offers.SetArchived(ctx, id, archived)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrOfferNotFound
	}
	s.invalidateFacets(ctx)
	s.log.Info("offer archive flag set", zap.Uint("offer_id", id), zap.Bool("archived", archived))
	return nil
}

func (s *CatalogService) ArchiveOffer(ctx context.Context, id uint) error {
	return s.setArchived(ctx, id, true)
}

func (s *CatalogService) RestoreOffer(ctx context.Context, id uint) error {
	return s.setArchived(ctx, id, false)
}

// GetActiveOffer returns ErrOfferUnavailable for missing and archived offers alike.
func (s *CatalogService) GetActiveOffer(ctx context.Context, id uint) (*domain.OfferDetail, error) {
	o, err := s.offers.FindActive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find offer: %w", err)
	}
	if o == nil {
		return nil, domain.ErrOfferUnavailable
	}
	return o, nil
}

func (s *CatalogService) SearchOffers(ctx context.Context, f domain.OfferFilter) ([]domain.OfferSummary, error) {
	out, err := s.offers.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search offers: %w", err)
	}
	if out == nil {
		out = []domain.OfferSummary{}
	}
	return out, nil
}

func (s *CatalogService) Facets(ctx context.Context) (Facets, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, facetsKey, s.facetsTTL, func(ctx context.Context) (Facets, error) {
		var f Facets
		var err error
		if f.Companies, err = s.offers.CompaniesWithOffers(ctx); err != nil {
			return f, fmt.Errorf("companies with offers: %w", err)
		}
		if f.ContractTypes, err = s.offers.ContractTypes(ctx); err != nil {
			return f, fmt.Errorf("contract types: %w", err)
		}
		return f, nil
	})
}

func (s *CatalogService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	st, err := s.offers.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("offer stats: %w", err)
	}
	d.Stats.ActiveOffers, d.Stats.ArchivedOffers = st.Active, st.Archived
	if d.Stats.Companies, err = s.companies.Count(ctx); err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}
	if d.Stats.Students, err = s.users.CountStudents(ctx); err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if d.RecentOffers, err = s.offers.Recent(ctx, 3); err != nil {
		return nil, fmt.Errorf("recent offers: %w", err)
	}
	if d.ArchivedOffers, err = s.offers.Archived(ctx); err != nil {
		return nil, fmt.Errorf("archived offers: %w", err)
	}
	if d.Companies, err = s.companies.List(ctx); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	if d.Facets, err = s.Facets(ctx); err != nil {
		return nil, err
	}
	if d.Students, err = s.users.ListStudents(ctx, 5); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return &d, nil
}
