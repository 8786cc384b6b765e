package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/domain"
	"job-portal/internal/transport/http/action"
	"job-portal/internal/transport/http/handler"
	mdw "job-portal/internal/transport/http/middleware"
)

// Route is one row of the route table. Guards run in order before Handler.
type Route struct {
	Method  string
	Path    string
	Guards  []gin.HandlerFunc
	Handler gin.HandlerFunc
}

type Handlers struct {
	Auth    *handler.AuthHandler
	Admin   *handler.AdminHandler
	Student *handler.StudentHandler
}

// Routes is the whole HTTP surface of the portal.
func Routes(l *zap.Logger, h Handlers, login gin.HandlerFunc) []Route {
	guest := mdw.RedirectIfAuthenticated()
	adminPage := mdw.RequireRole(domain.RoleAdmin, mdw.GuardPage)
	adminJSON := mdw.RequireRole(domain.RoleAdmin, mdw.GuardJSON)
	studentPage := mdw.RequireRole(domain.RoleStudent, mdw.GuardPage)
	studentJSON := mdw.RequireRole(domain.RoleStudent, mdw.GuardJSON)

	g := func(hs ...gin.HandlerFunc) []gin.HandlerFunc { return hs }

	return []Route{
		{http.MethodGet, "/", nil, h.Auth.Root},
		{http.MethodGet, "/login", g(guest), h.Auth.LoginPage},
		{http.MethodPost, "/login", g(login), h.Auth.Login},
		{http.MethodGet, "/register", g(guest), h.Auth.RegisterPage},
		{http.MethodPost, "/register", g(login), h.Auth.Register},
		{http.MethodPost, "/logout", nil, h.Auth.Logout},

		{http.MethodGet, "/admin/dashboard", g(adminPage), h.Admin.Dashboard},
		{http.MethodGet, "/admin/job-applications/:id", g(adminPage), h.Admin.Applications},
		{http.MethodPost, "/admin/job-offer/create", g(adminPage), h.Admin.CreateOffer},
		{http.MethodPost, "/admin/job-offer/archive", g(adminPage), h.Admin.ArchiveOffer},
		{http.MethodPost, "/admin/job-offer/restore", g(adminPage), h.Admin.RestoreOffer},
		{http.MethodPost, "/admin/company/create", g(adminPage), h.Admin.CreateCompany},
		{http.MethodPost, "/admin/company/update", g(adminPage), h.Admin.UpdateCompany},
		{http.MethodPost, "/admin/company/delete", g(adminPage), h.Admin.DeleteCompany},
		{http.MethodGet, "/admin/search", g(adminJSON), action.Handle(l, action.Action[handler.AdminSearchQuery]{
			Binder: action.BindQuery, Handler: h.Admin.Search,
		})},
		{http.MethodGet, "/admin/student-details", g(adminJSON), action.Handle(l, action.Action[handler.StudentDetailsQuery]{
			Binder: action.BindQuery, Handler: h.Admin.StudentDetails,
		})},
		{http.MethodPost, "/admin/update-application-status", g(adminJSON), action.Handle(l, action.Action[handler.StatusForm]{
			Binder: action.BindForm, CSRF: true, Handler: h.Admin.UpdateStatus,
		})},

		{http.MethodGet, "/student/jobs", g(studentPage), h.Student.Jobs},
		{http.MethodGet, "/student/jobs/search", g(studentJSON), action.Handle(l, action.Action[handler.StudentSearchQuery]{
			Binder: action.BindQuery, Handler: h.Student.Search,
		})},
		{http.MethodGet, "/student/jobs/:id", g(studentPage), h.Student.JobDetails},
		{http.MethodGet, "/student/my-applications", g(studentJSON), action.Handle(l, action.Action[struct{}]{
			Binder: action.BindNone, Handler: h.Student.MyApplications,
		})},
		{http.MethodPost, "/student/apply", g(studentPage), h.Student.Apply},
	}
}

func mount(r gin.IRoutes, routes []Route) {
	for _, rt := range routes {
		chain := append(append([]gin.HandlerFunc{}, rt.Guards...), rt.Handler)
		r.Handle(rt.Method, rt.Path, chain...)
	}
}
