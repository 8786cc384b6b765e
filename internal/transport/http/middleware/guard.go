package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job-portal/internal/core/session"
	"job-portal/internal/domain"
	resp "job-portal/internal/transport/http/response"
)

// UserKey is the session key of the logged-in domain.SessionUser.
const UserKey = "user"

const ctxUser = "portal.user"

func init() { session.Register(domain.SessionUser{}) }

type GuardMode int

const (
	GuardPage GuardMode = iota // redirect to /login
	GuardJSON                  // 401 with a JSON error body
)

// SessionUser reads the logged-in user from the session. A stored role
// outside the known set counts as logged out.
func SessionUser(s *session.Session) (domain.SessionUser, bool) {
	u, ok := s.Get(UserKey, nil).(domain.SessionUser)
	if !ok || u.ID == 0 {
		return domain.SessionUser{}, false
	}
	role, err := domain.ParseRole(string(u.Role))
	if err != nil {
		return domain.SessionUser{}, false
	}
	u.Role = role
	return u, true
}

// CurrentUser is the user a guard let through on this request.
func CurrentUser(c *gin.Context) (domain.SessionUser, bool) {
	u, ok := c.Get(ctxUser)
	if !ok {
		return domain.SessionUser{}, false
	}
	su, ok := u.(domain.SessionUser)
	return su, ok
}

// RequireRole lets the request through only when the session user has role.
// The session is read on every request.
func RequireRole(role domain.Role, mode GuardMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := SessionUser(session.From(c))
		if !ok || u.Role != role {
			guardDenied.WithLabelValues(string(role)).Inc()
			if mode == GuardJSON {
				c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

// RedirectIfAuthenticated sends a logged-in user to their role home.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := SessionUser(session.From(c)); ok {
			c.Redirect(http.StatusFound, u.Role.Home())
			c.Abort()
			return
		}
		c.Next()
	}
}
