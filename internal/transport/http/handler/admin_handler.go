package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"job-portal/internal/domain"
	"job-portal/internal/service"
	"job-portal/internal/transport/http/action"
)

const dashboard = "/admin/dashboard"

type AdminHandler struct {
	Page
	catalog *service.CatalogService
	apps    *service.ApplicationService
}

func NewAdminHandler(p Page, catalog *service.CatalogService, apps *service.ApplicationService) *AdminHandler {
	return &AdminHandler{Page: p, catalog: catalog, apps: apps}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.catalog.Dashboard(c.Request.Context())
	if err != nil {
		h.abort(c, err)
		return
	}
	h.render(c, "admin/dashboard", gin.H{"Dashboard": d})
}

// Applications lists who applied to one active offer.
func (h *AdminHandler) Applications(c *gin.Context) {
	id := parseID(c.Param("id"))
	if id == 0 {
		h.fail(c, dashboard, domain.NewValidationError("Invalid offer"), false)
		return
	}
	offer, list, err := h.apps.ApplicantsForOffer(c.Request.Context(), id)
	if err != nil {
		h.fail(c, dashboard, err, false)
		return
	}
	h.render(c, "admin/job_applications", gin.H{"Offer": offer, "Applications": list})
}

func (h *AdminHandler) CreateOffer(c *gin.Context) {
	if !h.checkCSRF(c, dashboard) {
		return
	}
	var in service.OfferInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, dashboard, domain.NewValidationError("Invalid data"), true)
		return
	}
	if _, err := h.catalog.CreateOffer(c.Request.Context(), in); err != nil {
		h.fail(c, dashboard, err, true)
		return
	}
	h.success(c, dashboard, "Offer created successfully")
}

func (h *AdminHandler) ArchiveOffer(c *gin.Context) {
	h.toggleOffer(c, h.catalog.ArchiveOffer, "Offer archived successfully")
}

func (h *AdminHandler) RestoreOffer(c *gin.Context) {
	h.toggleOffer(c, h.catalog.RestoreOffer, "Offer restored successfully")
}

func (h *AdminHandler) toggleOffer(c *gin.Context, op func(ctx context.Context, id uint) error, done string) {
	if !h.checkCSRF(c, dashboard) {
		return
	}
	var in idForm
	if err := c.ShouldBind(&in); err != nil || in.ID == 0 {
		h.fail(c, dashboard, domain.ErrOfferNotFound, false)
		return
	}
	if err := op(c.Request.Context(), in.ID); err != nil {
		h.fail(c, dashboard, err, false)
		return
	}
	h.success(c, dashboard, done)
}

func (h *AdminHandler) CreateCompany(c *gin.Context) {
	if !h.checkCSRF(c, dashboard) {
		return
	}
	var in service.CompanyInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, dashboard, domain.NewValidationError("Invalid data"), true)
		return
	}
	if _, err := h.catalog.CreateCompany(c.Request.Context(), in); err != nil {
		h.fail(c, dashboard, err, true)
		return
	}
	h.success(c, dashboard, "Company created successfully")
}

func (h *AdminHandler) UpdateCompany(c *gin.Context) {
	if !h.checkCSRF(c, dashboard) {
		return
	}
	var in service.CompanyInput
	if err := c.ShouldBind(&in); err != nil || in.ID == 0 {
		h.fail(c, dashboard, domain.ErrCompanyNotFound, false)
		return
	}
	if _, err := h.catalog.UpdateCompany(c.Request.Context(), in); err != nil {
		h.fail(c, dashboard, err, false)
		return
	}
	h.success(c, dashboard, "Company updated successfully")
}

func (h *AdminHandler) DeleteCompany(c *gin.Context) {
	if !h.checkCSRF(c, dashboard) {
		return
	}
	var in idForm
	if err := c.ShouldBind(&in); err != nil || in.ID == 0 {
		h.fail(c, dashboard, domain.ErrCompanyNotFound, false)
		return
	}
	if err := h.catalog.DeleteCompany(c.Request.Context(), in.ID); err != nil {
		h.fail(c, dashboard, err, false)
		return
	}
	h.success(c, dashboard, "Company deleted successfully")
}

// JSON actions. Guards and CSRF are set where they are registered.

type AdminSearchQuery struct {
	Search       string `form:"search"`
	CompanyID    uint   `form:"company_id"`
	ContractType string `form:"contract_type"`
}

func (h *AdminHandler) Search(c *gin.Context, in *AdminSearchQuery) (gin.H, error) {
	offers, err := h.catalog.SearchOffers(c.Request.Context(), domain.OfferFilter{
		Query:        strings.TrimSpace(in.Search),
		CompanyID:    in.CompanyID,
		ContractType: strings.TrimSpace(in.ContractType),
	})
	if err != nil {
		return nil, action.Internal("search failed", err)
	}
	return gin.H{"offers": offers, "count": len(offers)}, nil
}

type StudentDetailsQuery struct {
	StudentID uint `form:"student_id"`
}

func (h *AdminHandler) StudentDetails(c *gin.Context, in *StudentDetailsQuery) (gin.H, error) {
	if in.StudentID == 0 {
		return nil, action.BadRequest("Invalid data")
	}
	d, err := h.apps.StudentDetails(c.Request.Context(), in.StudentID)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return nil, action.NotFound(err.Error())
	}
	if err != nil {
		return nil, err
	}
	return gin.H{"student": d}, nil
}

type StatusForm struct {
	ApplicationID uint   `form:"application_id"`
	Status        string `form:"status"`
}

func (h *AdminHandler) UpdateStatus(c *gin.Context, in *StatusForm) (gin.H, error) {
	if in.ApplicationID == 0 || strings.TrimSpace(in.Status) == "" {
		return nil, action.BadRequest("Invalid data")
	}
	a, err := h.apps.UpdateStatus(c.Request.Context(), in.ApplicationID, in.Status)
	if err != nil {
		return nil, err
	}
	return gin.H{"message": "Status updated successfully", "status": a.Status}, nil
}
