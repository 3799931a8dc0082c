package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/moodlens/internal/vision"
)

// Pipeline is the part of the vision manager the API drives.
type Pipeline interface {
	Start(ctx context.Context) error
	Running() bool
	Err() error
	Stats() vision.Stats
}

// Controller is the capture surface of the vision core.
type Controller interface {
	Snapshot() vision.Snapshot
	Capture() (vision.CaptureEvent, bool)
	Exit()
}

// VisionHandler exposes start, state, capture and exit over HTTP.
type VisionHandler struct {
	base     context.Context
	pipeline Pipeline
	ctrl     Controller
}

// NewVisionHandler creates a VisionHandler. Pipelines started through it
// live until base is cancelled or exit is requested.
func NewVisionHandler(base context.Context, p Pipeline, c Controller) *VisionHandler {
	return &VisionHandler{base: base, pipeline: p, ctrl: c}
}

// StateResponse is the body of GET /api/vision/state.
type StateResponse struct {
	vision.Snapshot
	Running bool         `json:"running"`
	Error   string       `json:"error,omitempty"`
	Frames  vision.Stats `json:"frames"`
}

// BuildState assembles the state document served at /api/vision/state and
// pushed to event subscribers.
func BuildState(p Pipeline, c Controller) StateResponse {
	resp := StateResponse{
		Snapshot: c.Snapshot(),
		Running:  p.Running(),
		Frames:   p.Stats(),
	}
	if err := p.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// State builds the current state document.
func (h *VisionHandler) State() StateResponse {
	return BuildState(h.pipeline, h.ctrl)
}

// ServeHTTP routes /api/vision/{start,state,capture,exit}.
func (h *VisionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/vision/")

	want := http.MethodPost
	if action == "state" {
		want = http.MethodGet
	}

	switch action {
	case "start", "state", "capture", "exit":
	default:
		writeError(w, http.StatusNotFound, "Unknown vision action")
		return
	}
	if r.Method != want {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "start":
		h.start(w)
	case "state":
		writeJSON(w, http.StatusOK, h.State())
	case "capture":
		h.capture(w)
	case "exit":
		h.ctrl.Exit()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *VisionHandler) start(w http.ResponseWriter) {
	err := h.pipeline.Start(h.base)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, h.State())
	case errors.Is(err, vision.ErrAlreadyStarted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}

func (h *VisionHandler) capture(w http.ResponseWriter) {
	ev, ok := h.ctrl.Capture()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
