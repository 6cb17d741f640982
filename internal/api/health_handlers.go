package api

import (
	"net/http"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/http/response"
)

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// handleHealthCheck returns server health status with component checks.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	start := time.Now()
	if err := s.store.Ping(r.Context()); err != nil {
		components["database"] = ComponentHealth{
			Status:  "unhealthy",
			Message: err.Error(),
		}
		overall = "unhealthy"
	} else {
		components["database"] = ComponentHealth{
			Status:  "healthy",
			Latency: time.Since(start).String(),
		}
	}

	resp := HealthResponse{Status: overall, Components: components}
	if overall != "healthy" {
		response.JSON(w, http.StatusServiceUnavailable, resp, s.logger)
		return
	}
	response.Success(w, resp, s.logger)
}
