package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/moodlens/internal/app"
	"github.com/ayusman/moodlens/internal/config"
	"github.com/ayusman/moodlens/internal/logger"
	"github.com/ayusman/moodlens/internal/store"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "moodlens",
	Short:         "moodlens - webcam mood and gesture companion",
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `moodlens watches the webcam, classifies the user's facial expression
and hand pose in real time, and forwards captured moods to a chat service
through capture hooks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("verbose") {
			logger.SetVerbose(verbose)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default ~/.moodlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadSettings reads the config file and prepares the data directories.
func loadSettings() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(config.Default().DataDir, "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

// openApp loads settings, opens the store and builds the App. The returned
// cleanup closes both.
func openApp() (*app.App, *config.Config, func(), error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize store: %w", err)
	}

	a, err := app.New(app.Config{Settings: cfg, Store: st})
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		a.Close()
		st.Close()
	}
	return a, cfg, cleanup, nil
}

// startVision starts the pipeline, logging rather than failing when the
// camera or detectors are unavailable so the rest of the app stays up.
func startVision(ctx context.Context, a *app.App) {
	if err := a.Start(ctx); err != nil {
		logger.Error("vision pipeline unavailable", "error", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.moodlens/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
