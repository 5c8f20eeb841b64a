package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"writeq/internal/database"
	"writeq/internal/store"
)

// maxValueBytes bounds a single uploaded value.
const maxValueBytes = 4 << 20

// GetKey returns the raw value stored for the key in the URL.
func (h *Handlers) GetKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	value, err := h.store.Get(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, "key not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "read failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(value)
}

// PutKey stores the request body as the value for the key in the URL.
// The request blocks until the write has committed.
func (h *Handlers) PutKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		writeJSONError(w, "key must not be empty", http.StatusBadRequest)
		return
	}

	value, err := io.ReadAll(io.LimitReader(r.Body, maxValueBytes+1))
	if err != nil {
		writeJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(value) > maxValueBytes {
		writeJSONError(w, "value too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := h.store.Put(key, value); err != nil {
		if errors.Is(err, database.ErrWritesDisabled) {
			writeJSONError(w, "service is shutting down", http.StatusServiceUnavailable)
			return
		}
		writeJSONError(w, "write failed", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, "stored")
}

// DeleteKey removes the value for the key in the URL.
func (h *Handlers) DeleteKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	removed, err := h.store.Delete(key)
	if err != nil {
		if errors.Is(err, database.ErrWritesDisabled) {
			writeJSONError(w, "service is shutting down", http.StatusServiceUnavailable)
			return
		}
		writeJSONError(w, "delete failed", http.StatusInternalServerError)
		return
	}
	if !removed {
		writeJSONError(w, "key not found", http.StatusNotFound)
		return
	}

	writeJSONStatus(w, "deleted")
}

// BulkPut stores every key/value pair of the JSON request body in one
// atomic transaction.
func (h *Handlers) BulkPut(w http.ResponseWriter, r *http.Request) {
	var pairs map[string]string
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxValueBytes))
	if err := decoder.Decode(&pairs); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(pairs) == 0 {
		writeJSONError(w, "no pairs supplied", http.StatusBadRequest)
		return
	}

	records := make([]store.Record, 0, len(pairs))
	for key, value := range pairs {
		if key == "" {
			writeJSONError(w, "key must not be empty", http.StatusBadRequest)
			return
		}
		records = append(records, store.Record{Key: key, Value: []byte(value)})
	}

	if err := h.store.PutMany(records); err != nil {
		if errors.Is(err, database.ErrWritesDisabled) {
			writeJSONError(w, "service is shutting down", http.StatusServiceUnavailable)
			return
		}
		writeJSONError(w, "bulk write failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"status": "stored",
		"count":  len(records),
	})
}

// ListKeys returns all keys matching the optional prefix query parameter.
func (h *Handlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	keys, err := h.store.Keys(r.Context(), prefix)
	if err != nil {
		writeJSONError(w, "key listing failed", http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"keys":  keys,
		"count": len(keys),
	})
}
