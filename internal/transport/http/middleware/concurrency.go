package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "noteapp/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求超过 max 时直接 503，不排队
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	slots := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !slots.TryAcquire(1) {
			c.Header("Retry-After", "1")
			resp.Abort(c, resp.CodeUnavailable, "server busy")
			return
		}
		defer slots.Release(1)
		c.Next()
	}
}
