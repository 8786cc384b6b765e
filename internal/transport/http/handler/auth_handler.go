package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/core/csrf"
	"job-portal/internal/core/session"
	"job-portal/internal/domain"
	"job-portal/internal/service"
	mdw "job-portal/internal/transport/http/middleware"
)

type AuthHandler struct {
	Page
	auth *service.AuthService
}

func NewAuthHandler(p Page, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Page: p, auth: auth}
}

// Root sends the visitor to their role home, or to the login page.
func (h *AuthHandler) Root(c *gin.Context) {
	if u, ok := mdw.SessionUser(session.From(c)); ok {
		c.Redirect(http.StatusFound, u.Role.Home())
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.render(c, "auth/login", nil)
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.render(c, "auth/register", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	if !h.checkCSRF(c, "/login") {
		return
	}
	var in service.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, "/login", domain.NewValidationError("Invalid data"), true)
		return
	}
	u, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "/login", err, true)
		return
	}
	h.signIn(c, u)
}

func (h *AuthHandler) Register(c *gin.Context) {
	if !h.checkCSRF(c, "/register") {
		return
	}
	var in service.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, "/register", domain.NewValidationError("Invalid data"), true)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "/register", err, true)
		return
	}
	h.signIn(c, u)
}

// signIn moves the session to a fresh id before storing the user in it.
func (h *AuthHandler) signIn(c *gin.Context, u *domain.User) {
	s := session.From(c)
	if err := s.Regenerate(); err != nil {
		h.Log.Warn("old session not removed", zap.Error(err))
	}
	csrf.InvalidateToken(s)
	s.Set(mdw.UserKey, u.Snapshot())
	h.redirect(c, u.Role.Home())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if !h.checkCSRF(c, "/") {
		return
	}
	s := session.From(c)
	csrf.InvalidateToken(s)
	if err := s.Destroy(); err != nil {
		h.Log.Warn("session record not removed", zap.Error(err))
	}
	h.redirect(c, "/login")
}
