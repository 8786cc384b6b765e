package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "job-portal/internal/transport/http/response"
)

// Responder writes the rejection of a request stopped by a middleware.
type Responder func(c *gin.Context, code int, msg string)

// JSONResponder answers {"success":false,"error":msg}.
func JSONResponder(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(resp.HTTPStatus(code), resp.Error(code, msg))
}

// WantsJSON guesses from the request headers whether the caller is a script.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// Recovery is the response half of panic recovery; logging is done by ginzap.
func Recovery(c *gin.Context, _ any) {
	if WantsJSON(c) {
		JSONResponder(c, resp.CodeServerError, "")
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.AbortWithStatus(http.StatusInternalServerError)
	_, _ = c.Writer.WriteString("Internal Server Error")
}
