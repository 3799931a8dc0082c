package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/moodlens/internal/store"
)

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 500

// CaptureHandler serves the capture journal.
type CaptureHandler struct {
	store *store.Store
}

// NewCaptureHandler creates a new CaptureHandler with the given store.
func NewCaptureHandler(s *store.Store) *CaptureHandler {
	return &CaptureHandler{store: s}
}

// ServeHTTP routes /api/captures and /api/captures/{id}.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/captures")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listCapturesResponse struct {
	Captures []*store.Capture `json:"captures"`
}

type captureResponse struct {
	*store.Capture
	Deliveries []*store.Delivery `json:"deliveries"`
}

// list handles GET /api/captures?limit=N, newest first.
func (h *CaptureHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	captures, err := h.store.Captures().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list captures")
		return
	}
	if captures == nil {
		captures = []*store.Capture{}
	}

	writeJSON(w, http.StatusOK, listCapturesResponse{Captures: captures})
}

// get handles GET /api/captures/{id} with its hook deliveries.
func (h *CaptureHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.store.Captures().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get capture")
		return
	}

	deliveries, err := h.store.Deliveries().ListByCapture(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list deliveries")
		return
	}
	if deliveries == nil {
		deliveries = []*store.Delivery{}
	}

	writeJSON(w, http.StatusOK, captureResponse{Capture: c, Deliveries: deliveries})
}

// delete handles DELETE /api/captures/{id}.
func (h *CaptureHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Captures().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete capture")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
