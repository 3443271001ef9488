package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/langbridge-backend/internal/http/response"
	"github.com/yungbote/langbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

// Recovery turns a handler panic into the generic 500 envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if log != nil {
				log.Error("panic recovered",
					"panic", fmt.Sprint(rec),
					"path", c.Request.URL.Path,
					"request_id", ctxutil.RequestID(c.Request.Context()),
					"stack", string(debug.Stack()),
				)
			}
			response.RespondErr(c, fmt.Errorf("panic: %v", rec))
		}()
		c.Next()
	}
}
