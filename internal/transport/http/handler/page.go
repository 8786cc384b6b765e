// Package handler holds the page handlers: they read forms, call the
// services and answer with a rendered page or a redirect carrying flash data.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/core/csrf"
	"job-portal/internal/core/session"
	"job-portal/internal/domain"
	mdw "job-portal/internal/transport/http/middleware"
	resp "job-portal/internal/transport/http/response"
)

// Flash keys shared by the redirect and render helpers.
const (
	flashErrors  = "errors"
	flashSuccess = "success"
	flashOld     = "old"
)

// never echoed back into a form
var secretFields = map[string]bool{
	"password":         true,
	"password_confirm": true,
	csrf.FormField:     true,
}

// Page bundles what every page handler needs.
type Page struct {
	Log *zap.Logger
}

// render adds the shared page data and writes the page. Flash data is
// consumed here, so it shows exactly once.
func (p Page) render(c *gin.Context, name string, data gin.H) {
	s := session.From(c)
	if data == nil {
		data = gin.H{}
	}
	data["User"] = nil
	if u, ok := mdw.SessionUser(s); ok {
		data["User"] = &u
	}
	data["CSRFToken"] = csrf.GenerateToken(s)
	errs, _ := s.Pull(flashErrors).([]string)
	data["Errors"] = errs
	data["Success"], _ = s.Pull(flashSuccess).(string)
	old, _ := s.Pull(flashOld).(map[string]string)
	if old == nil {
		old = map[string]string{}
	}
	data["Old"] = old
	p.save(c)
	c.HTML(http.StatusOK, name, data)
}

func (p Page) save(c *gin.Context) {
	if err := session.From(c).Save(); err != nil {
		p.Log.Error("session save failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
}

// redirect saves the session before the 302 goes out.
func (p Page) redirect(c *gin.Context, to string) {
	p.save(c)
	c.Redirect(http.StatusFound, to)
}

func (p Page) success(c *gin.Context, to, msg string) {
	session.From(c).Flash(flashSuccess, msg)
	p.redirect(c, to)
}

// fail flashes the user-facing messages of err and redirects to to.
// Unknown errors are logged and replaced by a generic message.
func (p Page) fail(c *gin.Context, to string, err error, keepInput bool) {
	s := session.From(c)
	msgs := domain.Messages(err)
	if len(msgs) == 0 {
		p.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msgs = []string{resp.CodeMsgMap[resp.CodeServerError]}
	}
	s.Flash(flashErrors, msgs)
	if keepInput {
		s.Flash(flashOld, oldInput(c))
	}
	p.redirect(c, to)
}

// checkCSRF verifies the submitted token and, on failure, flashes the
// generic message and redirects to back.
func (p Page) checkCSRF(c *gin.Context, back string) bool {
	if csrf.VerifyToken(session.From(c), csrf.FromRequest(c)) {
		return true
	}
	session.From(c).Flash(flashErrors, []string{csrf.Message})
	p.redirect(c, back)
	return false
}

// oldInput is the submitted form without secrets.
func oldInput(c *gin.Context) map[string]string {
	out := map[string]string{}
	if err := c.Request.ParseForm(); err != nil {
		return out
	}
	for k, v := range c.Request.PostForm {
		if secretFields[k] || len(v) == 0 {
			continue
		}
		out[k] = v[0]
	}
	return out
}

// DenyPage is the rate limiter answer on form posts.
func (p Page) DenyPage(c *gin.Context, _ int, msg string) {
	session.From(c).Flash(flashErrors, []string{msg})
	p.redirect(c, c.Request.URL.Path)
	c.Abort()
}

// abort logs err and answers a bare 500 page.
func (p Page) abort(c *gin.Context, err error) {
	p.Log.Error("page failed", zap.String("path", c.FullPath()), zap.Error(err))
	p.save(c)
	mdw.Recovery(c, err)
}

// idForm is the hidden id field of the row forms.
type idForm struct {
	ID uint `form:"id"`
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
