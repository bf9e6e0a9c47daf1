package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obslogger "github.com/smallbiznis/netbill/internal/observability/logger"
)

const ctxUserIDKey = "user_id"

// AuthRequired gates a route group behind a bearer token. The token subject
// is stored on the gin context and the request context for downstream
// handlers and log enrichment.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, err := s.authSvc.VerifyToken(token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Request = c.Request.WithContext(obslogger.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUserID returns the authenticated subject set by AuthRequired.
func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
