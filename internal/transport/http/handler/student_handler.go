package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"job-portal/internal/domain"
	"job-portal/internal/service"
	"job-portal/internal/transport/http/action"
	mdw "job-portal/internal/transport/http/middleware"
)

const jobsPage = "/student/jobs"

type StudentHandler struct {
	Page
	catalog *service.CatalogService
	apps    *service.ApplicationService
}

func NewStudentHandler(p Page, catalog *service.CatalogService, apps *service.ApplicationService) *StudentHandler {
	return &StudentHandler{Page: p, catalog: catalog, apps: apps}
}

// jobFilters echoes the raw query back into the filter form.
type jobFilters struct {
	Query        string
	CompanyID    string
	ContractType string
}

func (f jobFilters) offerFilter() domain.OfferFilter {
	return domain.OfferFilter{
		Query:        strings.TrimSpace(f.Query),
		CompanyID:    parseID(f.CompanyID),
		ContractType: strings.TrimSpace(f.ContractType),
	}
}

func (h *StudentHandler) Jobs(c *gin.Context) {
	u, _ := mdw.CurrentUser(c)
	ctx := c.Request.Context()
	f := jobFilters{Query: c.Query("q"), CompanyID: c.Query("company_id"), ContractType: c.Query("contract_type")}

	offers, err := h.catalog.SearchOffers(ctx, f.offerFilter())
	if err != nil {
		h.abort(c, err)
		return
	}
	facets, err := h.catalog.Facets(ctx)
	if err != nil {
		h.abort(c, err)
		return
	}
	locked, err := h.apps.HasAcceptedApplication(ctx, u.ID)
	if err != nil {
		h.abort(c, err)
		return
	}
	h.render(c, "student/jobs", gin.H{
		"Offers":      offers,
		"Facets":      facets,
		"Filters":     f,
		"HasAccepted": locked,
	})
}

func (h *StudentHandler) JobDetails(c *gin.Context) {
	u, _ := mdw.CurrentUser(c)
	ctx := c.Request.Context()
	offer, err := h.catalog.GetActiveOffer(ctx, parseID(c.Param("id")))
	if err != nil {
		h.fail(c, jobsPage, err, false)
		return
	}
	applied, err := h.apps.HasApplied(ctx, u.ID, offer.ID)
	if err != nil {
		h.abort(c, err)
		return
	}
	locked, err := h.apps.HasAcceptedApplication(ctx, u.ID)
	if err != nil {
		h.abort(c, err)
		return
	}
	h.render(c, "student/job_details", gin.H{
		"Offer":       offer,
		"HasApplied":  applied,
		"HasAccepted": locked,
	})
}

// Apply always answers on the offer page; an offer that cannot be shown
// forwards from there to the list.
func (h *StudentHandler) Apply(c *gin.Context) {
	var in service.ApplyInput
	bindErr := c.ShouldBind(&in)
	back := jobsPage
	if bindErr == nil && in.OfferID != 0 {
		back = fmt.Sprintf("%s/%d", jobsPage, in.OfferID)
	}
	if !h.checkCSRF(c, back) {
		return
	}
	if bindErr != nil {
		h.fail(c, jobsPage, domain.ErrOfferUnavailable, true)
		return
	}
	u, _ := mdw.CurrentUser(c)
	if _, err := h.apps.Apply(c.Request.Context(), u.ID, in); err != nil {
		h.fail(c, back, err, true)
		return
	}
	h.success(c, back, "Application sent successfully")
}

type StudentSearchQuery struct {
	Q            string `form:"q"`
	CompanyID    uint   `form:"company_id"`
	ContractType string `form:"contract_type"`
}

func (h *StudentHandler) Search(c *gin.Context, in *StudentSearchQuery) (gin.H, error) {
	offers, err := h.catalog.SearchOffers(c.Request.Context(), domain.OfferFilter{
		Query:        strings.TrimSpace(in.Q),
		CompanyID:    in.CompanyID,
		ContractType: strings.TrimSpace(in.ContractType),
	})
	if err != nil {
		return nil, action.Internal("search failed", err)
	}
	return gin.H{"offers": offers}, nil
}

func (h *StudentHandler) MyApplications(c *gin.Context, _ *struct{}) (gin.H, error) {
	u, _ := mdw.CurrentUser(c)
	list, err := h.apps.ListForStudent(c.Request.Context(), u.ID)
	if err != nil {
		return nil, action.Internal("list applications failed", err)
	}
	return gin.H{"applications": list}, nil
}
