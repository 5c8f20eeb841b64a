package handlers

import (
	"net/http"
	"runtime"
	"time"

	"writeq/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStopping = "stopping"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	accepting := h.dbc.WritesEnabled()

	response := HealthResponse{
		Ready:        accepting,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if accepting {
		response.Status = statusHealthy
	} else {
		response.Status = statusStopping
	}

	w.Header().Set("Content-Type", "application/json")
	if !accepting {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, response)
}

// LivenessCheck reports that the process is running.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "alive")
}

// ReadinessCheck reports whether the service accepts writes.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if !h.dbc.WritesEnabled() {
		writeJSONError(w, "write dispatcher is stopping", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}
