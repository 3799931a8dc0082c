package plugin

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/moodlens/internal/logger"
)

// maxConcurrentHooks bounds hooks running at once for one event.
const maxConcurrentHooks = 4

// Delivery is the outcome of one hook run.
type Delivery struct {
	Plugin   string
	Response *Response
	Err      error
}

// OK reports whether the hook ran and reported success.
func (d Delivery) OK() bool {
	return d.Err == nil && d.Response != nil && d.Response.Success
}

// ErrorText describes a failed delivery.
func (d Delivery) ErrorText() string {
	switch {
	case d.Err != nil:
		return d.Err.Error()
	case d.Response != nil && !d.Response.Success:
		return d.Response.Error
	default:
		return ""
	}
}

// Notifier fans an event out to every subscribed hook.
type Notifier struct {
	mgr  *Manager
	exec *Executor
}

// NewNotifier creates a Notifier.
func NewNotifier(mgr *Manager, exec *Executor) *Notifier {
	return &Notifier{mgr: mgr, exec: exec}
}

// Notify runs every hook subscribed to req.Event and returns one Delivery
// per hook, in plugin name order. Hook failures are logged and reported in
// the deliveries, never returned as an error.
func (n *Notifier) Notify(ctx context.Context, req *Request) []Delivery {
	plugins := n.mgr.Subscribers(req.Event)
	out := make([]Delivery, len(plugins))

	var g errgroup.Group
	g.SetLimit(maxConcurrentHooks)
	for i, p := range plugins {
		i, p := i, p
		g.Go(func() error {
			resp, err := n.exec.Execute(ctx, p, req)
			out[i] = Delivery{Plugin: p.Manifest.Name, Response: resp, Err: err}
			if !out[i].OK() {
				logger.Warn("capture hook failed", "plugin", p.Manifest.Name, "error", out[i].ErrorText())
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
