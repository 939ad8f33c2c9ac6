package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rental/backend/internal/infrastructure/persistence"
	"github.com/rental/backend/internal/interfaces/http/dto"
)

// DatabaseStatus reports database reachability
type DatabaseStatus interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// SessionCounter reports the number of open draft sessions
type SessionCounter interface {
	Len() int
}

// HealthHandler serves the health check
type HealthHandler struct {
	BaseHandler
	db        DatabaseStatus
	sessions  SessionCounter
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. db is nil when contracts
// live behind the REST gateway.
func NewHealthHandler(db DatabaseStatus, sessions SessionCounter, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sessions:  sessions,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status       string                       `json:"status"`
	Version      string                       `json:"version"`
	GoVersion    string                       `json:"go_version"`
	Uptime       string                       `json:"uptime"`
	OpenSessions int                          `json:"open_sessions"`
	Database     string                       `json:"database"`
	DBStats      *persistence.ConnectionStats `json:"db_stats,omitempty"`
}

// Check reports service health; 503 when the database is unreachable
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  "not_configured",
	}
	if h.sessions != nil {
		resp.OpenSessions = h.sessions.Len()
	}

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "up"
			if stats, err := h.db.Stats(); err == nil {
				resp.DBStats = &stats
			}
		}
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
