package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/procure_api/internal/utils"
)

// JWTMiddleware guards admin routes with the bearer token issued at login.
type JWTMiddleware struct{}

func NewJWTMiddleware() *JWTMiddleware {
	return &JWTMiddleware{}
}

// Handle requires an Authorization: Bearer header.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return m.handle(false)
}

// HandleWithQueryToken also accepts the token in the "token" query parameter.
func (m *JWTMiddleware) HandleWithQueryToken() gin.HandlerFunc {
	return m.handle(true)
}

func (m *JWTMiddleware) handle(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			utils.Error(c, 401, "UNAUTHORIZED", msg)
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// bearerToken extracts the token, or returns the reason it could not.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Missing authorization header"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "Invalid authorization header"
	}
	return strings.TrimSpace(parts[1]), "Invalid authorization header"
}
