package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/learnassure/course-assistant/internal/common"
)

const RequestIDKey = "request_id"

// RequestID attaches a ULID to every request and echoes it back in the
// X-Request-ID header so log lines can be correlated with client reports.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			id, err := common.NewULID()
			if err != nil {
				log.Printf("[RequestID] ulid generation failed: %v", err)
			} else {
				rid = id
			}
		}
		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}
