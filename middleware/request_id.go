package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a unique id to every request so log lines across
// middlewares and controllers can be correlated. An id supplied by a
// trusted upstream proxy is kept.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Writer.Header().Set(requestIDHeader, rid)
		ctx.Next()
	}
}
