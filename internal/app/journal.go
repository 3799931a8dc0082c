package app

import (
	"context"

	"github.com/ayusman/moodlens/internal/plugin"
	"github.com/ayusman/moodlens/internal/server"
	"github.com/ayusman/moodlens/internal/store"
	"github.com/ayusman/moodlens/internal/vision"
)

// record journals a capture, announces it to event subscribers and hands
// it to the capture hooks in the background.
func (a *App) record(ev vision.CaptureEvent) {
	c := &store.Capture{
		Mood:    string(ev.Mood),
		Gesture: string(ev.Gesture),
		Message: ev.Message,
	}
	if err := a.store.Captures().Create(c); err != nil {
		a.log.Error("failed to journal capture", "mood", ev.Mood, "error", err)
		c = nil
	}

	a.hub.Broadcast(server.EventCapture, ev)

	a.delivers.Add(1)
	go func() {
		defer a.delivers.Done()
		a.deliver(a.ctx, c, ev)
	}()
}

// deliver runs every capture hook and records the outcome against c when
// the capture was journaled.
func (a *App) deliver(ctx context.Context, c *store.Capture, ev vision.CaptureEvent) {
	deliveries := a.notifier.Notify(ctx, &plugin.Request{
		Event:   plugin.EventCapture,
		Mood:    string(ev.Mood),
		Gesture: string(ev.Gesture),
		Message: ev.Message,
	})

	for _, d := range deliveries {
		if d.OK() {
			a.log.Debug("capture delivered", "plugin", d.Plugin)
		}

		if c == nil {
			continue
		}
		rec := &store.Delivery{
			CaptureID:  c.ID,
			PluginName: d.Plugin,
			Success:    d.OK(),
			Error:      d.ErrorText(),
		}
		if err := a.store.Deliveries().Record(rec); err != nil {
			a.log.Error("failed to record delivery", "plugin", d.Plugin, "error", err)
		}
	}
}
