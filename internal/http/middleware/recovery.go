package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/roster/pkg"
	"github.com/roguepikachu/roster/pkg/logger"
)

// Recovery recovers from panics, logs them with the stack, and returns the
// generic 500 error body. The panic value never reaches the client.
func Recovery(now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.With(c.Request.Context(), map[string]any{"panic": r, "stack": string(debug.Stack())}).Error("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					pkg.NewErrorResponse(http.StatusInternalServerError, "internal server error", now().UnixMilli()))
			}
		}()
		c.Next()
	}
}
