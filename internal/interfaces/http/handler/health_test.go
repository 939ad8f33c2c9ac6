package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rental/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDatabase struct {
	pingErr error
}

func (f fakeDatabase) Ping() error { return f.pingErr }

func (f fakeDatabase) Stats() (persistence.ConnectionStats, error) {
	return persistence.ConnectionStats{OpenConnections: 2}, nil
}

type fixedCounter int

func (n fixedCounter) Len() int { return int(n) }

func serveHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	engine := gin.New()
	engine.GET("/health", h.Check)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &body))
	return w.Code, body
}

func TestHealthHandler_Check(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		code, body := serveHealth(t, NewHealthHandler(fakeDatabase{}, fixedCounter(3), "1.2.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "up", body.Database)
		assert.Equal(t, 3, body.OpenSessions)
		assert.Equal(t, "1.2.0", body.Version)
		require.NotNil(t, body.DBStats)
		assert.Equal(t, 2, body.DBStats.OpenConnections)
	})

	t.Run("database down", func(t *testing.T) {
		code, body := serveHealth(t, NewHealthHandler(fakeDatabase{pingErr: errors.New("refused")}, nil, "1.2.0"))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "down", body.Database)
		assert.Nil(t, body.DBStats)
	})

	t.Run("gateway mode", func(t *testing.T) {
		code, body := serveHealth(t, NewHealthHandler(nil, fixedCounter(0), "dev"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "not_configured", body.Database)
	})
}
