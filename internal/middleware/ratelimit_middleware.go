package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/cache"
	"github.com/GTDGit/procure_api/internal/utils"
)

// Login failures allowed per IP within one window.
const (
	maxInvalidAuthAttempts = 5
	invalidAuthWindow      = time.Minute
)

// InvalidAuthRateLimiter blocks an IP after repeated failed logins. Counters
// live in Redis so every API instance shares them. The handler marks a
// failure by setting "auth_failed" on the context.
type InvalidAuthRateLimiter struct {
	redis *cache.RedisClient
}

func NewInvalidAuthRateLimiter(redis *cache.RedisClient) *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{redis: redis}
}

func (r *InvalidAuthRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.redis == nil {
			c.Next()
			return
		}

		key := "login:fail:" + c.ClientIP()
		if r.blocked(c.Request.Context(), key) {
			utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		c.Next()

		if c.GetBool("auth_failed") {
			// Count even if the client already went away.
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if _, err := r.redis.Incr(ctx, key, invalidAuthWindow); err != nil {
				log.Warn().Err(err).Msg("failed to record login failure")
			}
		}
	}
}

// blocked fails open when Redis is unavailable.
func (r *InvalidAuthRateLimiter) blocked(ctx context.Context, key string) bool {
	raw, err := r.redis.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("rate limiter unavailable")
		}
		return false
	}
	n, _ := strconv.Atoi(raw)
	return n >= maxInvalidAuthAttempts
}
