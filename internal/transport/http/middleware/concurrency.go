package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "job-portal/internal/transport/http/response"
)

// ConcurrencyLimit caps the requests in flight to protect the database.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			JSONResponder(c, resp.CodeServerError, "Server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
