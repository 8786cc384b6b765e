package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "job-portal/internal/transport/http/response"
)

func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			JSONResponder(c, resp.CodeBadRequest, "Request body too large")
		}
	}
}
