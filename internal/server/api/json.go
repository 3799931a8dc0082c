// Package api provides the HTTP API handlers for moodlens.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/moodlens/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends v with status. State and capture bodies change from one
// request to the next, so responses are never cached.
func writeJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("response write failed", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
