package handlers

import (
	"net/http"
	"time"
)

// StatsResponse contains service statistics
type StatsResponse struct {
	Records       int64  `json:"records"`
	DatabasePath  string `json:"databasePath"`
	WritesEnabled bool   `json:"writesEnabled"`
	Uptime        string `json:"uptime"`
}

// GetStats returns record count and dispatcher state.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	count, err := h.store.Count()
	if err != nil {
		writeJSONError(w, "stats query failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, StatsResponse{
		Records:       count,
		DatabasePath:  h.dbc.Path(),
		WritesEnabled: h.dbc.WritesEnabled(),
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
	})
}
