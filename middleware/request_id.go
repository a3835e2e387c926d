// middleware/request_id.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out of the service.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin context key the request id is stored under.
	RequestIDKey = "requestID"
)

// RequestID tags every request with an id for log correlation. An id supplied
// by the caller is kept so the id can follow a request across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
