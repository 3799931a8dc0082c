package vision

import (
	"sync"

	"github.com/ayusman/moodlens/internal/gesture"
	"github.com/ayusman/moodlens/internal/logger"
	"github.com/ayusman/moodlens/internal/mood"
)

// CaptureEvent is emitted when the user captures a non-neutral mood.
type CaptureEvent struct {
	Mood    mood.Mood       `json:"mood"`
	Gesture gesture.Gesture `json:"gesture"`
	Message string          `json:"message"`
}

// CaptureMessage is the chat prompt sent for a captured mood.
func CaptureMessage(m mood.Mood) string {
	return "The user looks " + string(m) + ".Ask him Why.."
}

// Controller is the surface the host application drives: it captures the
// current classification on demand and tears the pipeline down on exit.
type Controller struct {
	mgr *Manager

	mu        sync.Mutex
	onCapture []func(CaptureEvent)
	onExit    []func()
}

// NewController returns a controller for m.
func NewController(m *Manager) *Controller {
	return &Controller{mgr: m}
}

// Manager returns the pipeline the controller drives.
func (c *Controller) Manager() *Manager {
	return c.mgr
}

// OnCapture registers fn to receive every emitted capture event.
func (c *Controller) OnCapture(fn func(CaptureEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCapture = append(c.onCapture, fn)
}

// OnExit registers fn to run after each Exit.
func (c *Controller) OnExit(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExit = append(c.onExit, fn)
}

// Snapshot returns the current classification.
func (c *Controller) Snapshot() Snapshot {
	return c.mgr.State().Snapshot()
}

// Capture reads the live state and, unless the pipeline is stopped or the
// mood is neutral, emits one CaptureEvent to every registered callback. It
// reports whether an event was emitted.
func (c *Controller) Capture() (CaptureEvent, bool) {
	if !c.mgr.Running() {
		logger.Debug("capture skipped", "reason", "not running")
		return CaptureEvent{}, false
	}

	snap := c.Snapshot()
	if snap.Mood == mood.Neutral || snap.Mood == "" {
		logger.Debug("capture skipped", "reason", "neutral")
		return CaptureEvent{}, false
	}

	ev := CaptureEvent{
		Mood:    snap.Mood,
		Gesture: snap.Gesture,
		Message: CaptureMessage(snap.Mood),
	}

	c.mu.Lock()
	fns := append([]func(CaptureEvent)(nil), c.onCapture...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}

	logger.Info("mood captured", "mood", ev.Mood, "gesture", ev.Gesture)
	return ev, true
}

// Exit stops the pipeline and then runs the exit callbacks. Each call runs
// the callbacks once; the camera and sources are released only once.
func (c *Controller) Exit() {
	c.mgr.Stop()

	c.mu.Lock()
	fns := append([]func()(nil), c.onExit...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
