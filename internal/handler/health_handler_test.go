package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/cache"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name      string
		dbErr     error
		withRedis bool
		code      int
		status    string
	}{
		{name: "healthy", withRedis: true, code: http.StatusOK, status: "healthy"},
		{name: "redis down", withRedis: false, code: http.StatusOK, status: "degraded"},
		{name: "db down", dbErr: errors.New("connection refused"), withRedis: true, code: http.StatusServiceUnavailable, status: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer sqlDB.Close()
			mock.ExpectPing().WillReturnError(tt.dbErr)

			var rc *cache.RedisClient
			if tt.withRedis {
				mr := miniredis.RunT(t)
				rc = cache.NewRedisClientFrom(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
			}

			h := NewHealthHandler(sqlx.NewDb(sqlDB, "sqlmock"), rc)
			r := gin.New()
			r.GET("/v1/health", h.GetHealth)

			w := do(r, http.MethodGet, "/v1/health", nil, nil)
			assert.Equal(t, tt.code, w.Code)

			var data struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
			assert.Equal(t, tt.status, data.Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
