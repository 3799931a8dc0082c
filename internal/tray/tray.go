// Package tray provides a system tray interface for moodlens.
package tray

import (
	"context"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/moodlens/internal/overlay"
	"github.com/ayusman/moodlens/internal/vision"
)

// RefreshInterval is how often Watch polls the classification.
const RefreshInterval = 250 * time.Millisecond

// Tray represents the system tray application.
type Tray struct {
	onCapture   func()
	onDashboard func()
	onQuit      func()
	lastCapture string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuStatus      *systray.MenuItem
	menuLastCapture *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnCapture sets the callback run when "Capture Mood" is clicked.
func (t *Tray) OnCapture(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCapture = fn
}

// OnDashboard sets the callback run when the dashboard item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("moodlens")
	systray.SetTooltip("moodlens mood companion")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(overlay.StatusLine("", ""), "Current classification")
	t.menuStatus.Disable()
	t.menuLastCapture = systray.AddMenuItem(LastCaptureTitle(t.lastCapture), "Last captured mood")
	t.menuLastCapture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuCapture := systray.AddMenuItem("Capture Mood", "Send the current mood to chat")
	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Exit", "Stop the camera and quit moodlens")

	go func() {
		for {
			select {
			case <-menuCapture.ClickedCh:
				t.handleCapture()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) handleCapture() {
	t.mu.RLock()
	callback := t.onCapture
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit runs the quit callback and then leaves the tray loop.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the live status line.
func (t *Tray) SetStatus(s vision.Snapshot) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(overlay.StatusLine(s.Mood, s.Gesture))
	}
}

// SetLastCapture records the last captured mood and shows it in the menu.
func (t *Tray) SetLastCapture(ev vision.CaptureEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastCapture = string(ev.Mood)
	if t.menuLastCapture != nil {
		t.menuLastCapture.SetTitle(LastCaptureTitle(t.lastCapture))
	}
}

// LastCapture returns the last captured mood, or "" before any capture.
func (t *Tray) LastCapture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastCapture
}

// LastCaptureTitle formats the last-capture menu item.
func LastCaptureTitle(m string) string {
	if m == "" {
		return "Last capture: none"
	}
	return "Last capture: " + m
}

// Watch refreshes the status line from snapshot until ctx is done.
func (t *Tray) Watch(ctx context.Context, interval time.Duration, snapshot func() vision.Snapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last vision.Snapshot
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s := snapshot()
		if s == last {
			continue
		}
		last = s
		t.SetStatus(s)
	}
}
