package handlers

import (
	"time"

	"github.com/gorilla/mux"

	"writeq/internal/database"
	"writeq/internal/store"
)

// Handlers bundles the dependencies of every HTTP handler.
type Handlers struct {
	store     *store.Store
	dbc       *database.DatabaseContext
	startTime time.Time
}

// New creates the handler set.
func New(s *store.Store, dbc *database.DatabaseContext) *Handlers {
	return &Handlers{
		store:     s,
		dbc:       dbc,
		startTime: time.Now(),
	}
}

// Router builds the service router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	// Health and version routes
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Store API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/kv", h.BulkPut).Methods("POST")
	api.HandleFunc("/kv/{key:.+}", h.GetKey).Methods("GET")
	api.HandleFunc("/kv/{key:.+}", h.PutKey).Methods("PUT")
	api.HandleFunc("/kv/{key:.+}", h.DeleteKey).Methods("DELETE")
	api.HandleFunc("/keys", h.ListKeys).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")

	return r
}
