// Package plugin runs capture hooks: external executables that are handed
// every capture event as JSON on stdin.
package plugin

import (
	"encoding/json"
	"slices"
)

// EventCapture is the event sent when the user captures a mood.
const EventCapture = "capture"

// Manifest describes a hook's metadata and the events it wants.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the hook subscribes to event. A manifest without
// events subscribes to captures.
func (m Manifest) Handles(event string) bool {
	if len(m.Events) == 0 {
		return event == EventCapture
	}
	return slices.Contains(m.Events, event)
}

// Request is the JSON document written to a hook's stdin.
type Request struct {
	Event   string          `json:"event"`
	Mood    string          `json:"mood"`
	Gesture string          `json:"gesture"`
	Message string          `json:"message"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is the JSON document a hook writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered hook with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
