// Package app wires the moodlens vision core to the capture journal, the
// capture hooks and the event hub.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/moodlens/internal/capture"
	"github.com/ayusman/moodlens/internal/config"
	"github.com/ayusman/moodlens/internal/detector"
	"github.com/ayusman/moodlens/internal/logger"
	"github.com/ayusman/moodlens/internal/overlay"
	"github.com/ayusman/moodlens/internal/plugin"
	"github.com/ayusman/moodlens/internal/server"
	"github.com/ayusman/moodlens/internal/server/api"
	"github.com/ayusman/moodlens/internal/store"
	"github.com/ayusman/moodlens/internal/vision"
)

// StateInterval is how often state is pushed to event subscribers.
const StateInterval = 200 * time.Millisecond

// Config holds configuration options for the application.
type Config struct {
	Settings *config.Config
	Store    *store.Store

	// Camera, Face and Hand replace the devices built from Settings.
	Camera capture.Camera
	Face   vision.SourceFactory
	Hand   vision.SourceFactory
}

// App owns the vision pipeline and everything that reacts to captures.
type App struct {
	settings *config.Config
	store    *store.Store
	latest   *overlay.Latest
	mgr      *vision.Manager
	ctrl     *vision.Controller
	plugins  *plugin.Manager
	notifier *plugin.Notifier
	hub      *server.Hub
	log      *slog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	delivers  sync.WaitGroup
	closeOnce sync.Once
}

// New creates an App. Plugins are discovered once here.
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("app: store is required")
	}
	s := cfg.Settings

	if cfg.Camera == nil {
		cam := capture.NewCameraWithSize(s.Camera.Device, s.Camera.Width, s.Camera.Height)
		cam.SetFPS(s.Camera.FPS)
		cfg.Camera = cam
	}
	if cfg.Face == nil {
		cfg.Face = MediaPipeSource(detector.KindFace, s.MediaPipe)
	}
	if cfg.Hand == nil {
		cfg.Hand = MediaPipeSource(detector.KindHand, s.MediaPipe)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		settings: s,
		store:    cfg.Store,
		latest:   overlay.NewLatest(),
		plugins:  plugin.NewManager(s.Plugins.Dir),
		hub:      server.NewHub(),
		log:      logger.With("component", "app"),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.notifier = plugin.NewNotifier(a.plugins, plugin.NewExecutor(s.Plugins.Timeout))

	a.mgr = vision.NewManager(vision.Config{
		Camera:  cfg.Camera,
		Face:    cfg.Face,
		Hand:    cfg.Hand,
		Display: a.latest,
		OnError: func(err error) {
			a.hub.Broadcast(server.EventState, a.State())
		},
	})
	a.ctrl = vision.NewController(a.mgr)
	a.ctrl.OnCapture(a.record)
	a.ctrl.OnExit(func() {
		a.hub.Broadcast(server.EventExit, a.State())
	})

	if err := a.plugins.Discover(); err != nil {
		a.log.Warn("plugin discovery failed", "dir", s.Plugins.Dir, "error", err)
	}
	a.log.Info("plugins loaded", "count", len(a.plugins.List()))

	return a, nil
}

// MediaPipeSource returns a factory that starts a MediaPipe service of the
// given kind and adapts it to the asynchronous source contract.
func MediaPipeSource(kind detector.Kind, mp config.MediaPipe) vision.SourceFactory {
	return func() (detector.Source, error) {
		dc := detector.DefaultConfig(kind)
		dc.ScriptPath = mp.Script
		dc.PythonPath = mp.Python

		d, err := detector.NewMediaPipeDetector(dc)
		if err != nil {
			return nil, err
		}
		return detector.NewAsync(d), nil
	}
}

// Start launches the vision pipeline. It runs until ctx is cancelled or
// Exit is called, and may be started again afterwards.
func (a *App) Start(ctx context.Context) error {
	return a.mgr.Start(ctx)
}

// Controller returns the capture/exit surface.
func (a *App) Controller() *vision.Controller { return a.ctrl }

// Manager returns the vision pipeline.
func (a *App) Manager() *vision.Manager { return a.mgr }

// Latest returns the most recent annotated frame.
func (a *App) Latest() *overlay.Latest { return a.latest }

// Hub returns the event hub.
func (a *App) Hub() *server.Hub { return a.hub }

// Plugins returns the discovered capture hooks.
func (a *App) Plugins() *plugin.Manager { return a.plugins }

// State returns the current state document.
func (a *App) State() api.StateResponse {
	return api.BuildState(a.mgr, a.ctrl)
}

// Server builds the HTTP server for this app.
func (a *App) Server(ctx context.Context, staticDir string) *server.Server {
	return server.New(server.Config{
		StaticDir:   staticDir,
		Store:       a.store,
		Pipeline:    a.mgr,
		Controller:  a.ctrl,
		Frames:      a.latest,
		Hub:         a.hub,
		BaseContext: ctx,
	})
}

// Serve runs the HTTP server and the state publisher until ctx is done.
func (a *App) Serve(ctx context.Context, addr, staticDir string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server(ctx, staticDir).Run(ctx, addr)
	})
	g.Go(func() error {
		a.hub.PublishState(ctx, StateInterval, func() any { return a.State() })
		return nil
	})
	return g.Wait()
}

// Close exits the pipeline, waits for pending hook deliveries and releases
// the frame buffer and event clients. It is safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.ctrl.Exit()
		a.delivers.Wait()
		a.cancel()
		a.hub.Close()
		a.latest.Close()
	})
}
