package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/procure_api/internal/utils"
)

// SessionHeader carries the token returned when a session is started.
const SessionHeader = "X-Session-Token"

// SessionMiddleware resolves the procurement session token into "session_id".
// Whether the session still exists is left to the handler.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			utils.Error(c, 401, "SESSION_REQUIRED", "Missing "+SessionHeader+" header")
			c.Abort()
			return
		}

		sessionID, err := utils.ValidateSessionToken(token)
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired session token")
			c.Abort()
			return
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}
