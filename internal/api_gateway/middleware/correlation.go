package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationIDHeader carries the correlation id between services.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDKey is the gin context key the id is stored under.
const CorrelationIDKey = "correlation_id"

// CorrelationID tags every request with a correlation id. An id supplied by
// the caller is kept so a reconciliation can be traced across the gateway,
// Kafka and the processor; otherwise a fresh one is minted. The id is echoed
// back in the response header either way.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or "" when the
// middleware has not run.
func GetCorrelationID(c *gin.Context) string {
	v, _ := c.Get(CorrelationIDKey)
	id, _ := v.(string)
	return id
}
