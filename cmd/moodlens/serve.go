package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/moodlens/internal/logger"
)

var (
	serveAddr    string
	serveStatic  string
	serveNoStart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, MJPEG stream and event socket",
	Long: `Starts the vision pipeline and serves:

  GET  /api/health            liveness
  POST /api/vision/start      start the camera pipeline
  GET  /api/vision/state      mood, accuracy, gesture and frame counters
  POST /api/vision/capture    capture the current mood
  POST /api/vision/exit       stop the pipeline
  GET  /api/captures          capture journal
  GET  /api/stream            annotated MJPEG stream
  GET  /api/events            websocket of state and capture events`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "Directory of static dashboard files")
	serveCmd.Flags().BoolVar(&serveNoStart, "no-start", false, "Wait for POST /api/vision/start instead of starting the camera")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, cfg, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Listen
	}
	static := serveStatic
	if static == "" {
		static = findWebDir(cfg.DataDir)
	}
	if static != "" {
		logger.Info("serving static files", "dir", static)
	}

	if !serveNoStart {
		startVision(ctx, a)
	}

	return a.Serve(ctx, addr, static)
}
