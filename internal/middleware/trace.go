package middleware

import (
	"flaggate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceMiddleware propagates or mints a trace id and places it in the request
// context so the audit writer can stamp records with it.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set("TraceID", traceID)
		c.Request = c.Request.WithContext(service.WithTraceID(c.Request.Context(), traceID))
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}
