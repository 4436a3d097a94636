package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/cache"
	"github.com/GTDGit/procure_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-secret")
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/s", SessionMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("session_id"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/s", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_REQUIRED")

	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.Header.Set(SessionHeader, "garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	token, err := utils.GenerateSessionToken("sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/s", nil)
	req.Header.Set(SessionHeader, token)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", w.Body.String())
}

func TestJWTMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", NewJWTMiddleware().Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("email"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Session tokens are not admin tokens.
	sessionToken, err := utils.GenerateSessionToken("sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	token, err := utils.GenerateJWT(7, "ops@procure.in")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@procure.in", w.Body.String())

	// Query tokens are ignored unless the route opts in.
	w = serve(r, httptest.NewRequest(http.MethodGet, "/admin?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_QueryToken(t *testing.T) {
	r := gin.New()
	r.GET("/sse", NewJWTMiddleware().HandleWithQueryToken(), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", c.GetInt("user_id"))
	})

	token, err := utils.GenerateJWT(7, "ops@procure.in")
	require.NoError(t, err)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/sse?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/sse?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/sse", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidAuthRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisClientFrom(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	r := gin.New()
	r.POST("/login", NewInvalidAuthRateLimiter(rc).Handle(), func(c *gin.Context) {
		if c.Query("ok") == "1" {
			c.Status(http.StatusOK)
			return
		}
		c.Set("auth_failed", true)
		c.Status(http.StatusUnauthorized)
	})

	for i := 0; i < maxInvalidAuthAttempts; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := serve(r, httptest.NewRequest(http.MethodPost, "/login?ok=1", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	mr.FastForward(invalidAuthWindow + time.Second)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/login?ok=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.procure.in"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.procure.in")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "X-Session-Token")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.procure.in", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 8)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-Id"))
}
