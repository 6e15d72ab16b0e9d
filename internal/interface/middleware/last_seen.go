package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/microbloghq/microblog/internal/application"
)

// LastSeen refreshes the authenticated user's activity timestamp on every
// request. Must run after Auth. A failed refresh is logged, never fatal.
func LastSeen(svc *application.UserService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			if err := svc.TouchLastSeen(c.Request.Context(), uid); err != nil && logger != nil {
				logger.WithError(err).WithField("user_id", uid).Warn("last_seen refresh failed")
			}
		}
		c.Next()
	}
}
