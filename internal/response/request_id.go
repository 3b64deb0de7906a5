package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is where the middleware stores the request ID so that
// buildMetadata can echo it in the response envelope.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an ID for log correlation. An
// inbound X-Request-ID header is trusted as-is so a caller can trace its own
// requests; otherwise a fresh UUID is minted. The ID is echoed back in the
// X-Request-ID response header and in the envelope metadata.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
