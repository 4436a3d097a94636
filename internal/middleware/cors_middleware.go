package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured browser origins to call the API.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding",
			"Authorization", "Cache-Control", "X-Requested-With", "X-Session-Token",
		},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
