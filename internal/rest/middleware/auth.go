package middleware

import (
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/gin-gonic/gin"
)

// GatewayAuthMiddleware reads the acting user resolved by the upstream
// gateway and places it in the request context. Requests without an actor are
// rejected before reaching any handler.
func GatewayAuthMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(types.HeaderUserID)
		if userID == "" {
			log.Debugw("rejecting request without acting user",
				"path", c.Request.URL.Path,
				"request_id", types.GetRequestID(c.Request.Context()),
			)
			c.AbortWithStatusJSON(401, gin.H{
				"success": false,
				"error":   gin.H{"message": "Authentication is required"},
			})
			return
		}

		ctx := types.SetUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
