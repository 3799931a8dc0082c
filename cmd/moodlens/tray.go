package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/getlantern/systray"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/moodlens/internal/logger"
	"github.com/ayusman/moodlens/internal/tray"
	"github.com/ayusman/moodlens/internal/vision"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run from the system tray with the API server in the background",
	RunE:  runTray,
}

func init() {
	rootCmd.AddCommand(trayCmd)
}

func runTray(cmd *cobra.Command, args []string) error {
	a, cfg, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := tray.New()
	ctrl := a.Controller()
	ctrl.OnCapture(t.SetLastCapture)
	t.OnCapture(func() { ctrl.Capture() })
	t.OnDashboard(func() {
		if err := openBrowser(dashboardURL(cfg.Listen)); err != nil {
			logger.Warn("failed to open dashboard", "error", err)
		}
	})
	t.OnQuit(func() {
		ctrl.Exit()
		stop()
	})

	startVision(ctx, a)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Serve(gctx, cfg.Listen, findWebDir(cfg.DataDir))
	})
	g.Go(func() error {
		t.Watch(gctx, tray.RefreshInterval, func() vision.Snapshot { return ctrl.Snapshot() })
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		systray.Quit()
		return nil
	})

	t.Run()
	stop()
	return g.Wait()
}

func dashboardURL(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "http://localhost" + listen
	}
	return "http://" + listen
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	}
	return errors.New("unsupported platform " + runtime.GOOS)
}
