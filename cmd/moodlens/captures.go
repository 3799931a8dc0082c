package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/moodlens/internal/plugin"
	"github.com/ayusman/moodlens/internal/store"
)

var (
	capturesLimit int
	capturesJSON  bool
)

var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "List journaled captures, newest first",
	RunE:  runCaptures,
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List discovered capture hooks",
	RunE:  runPlugins,
}

func init() {
	rootCmd.AddCommand(capturesCmd)
	rootCmd.AddCommand(pluginsCmd)
	capturesCmd.Flags().IntVarP(&capturesLimit, "limit", "n", store.DefaultListLimit, "Maximum captures to show")
	capturesCmd.Flags().BoolVar(&capturesJSON, "json", false, "Print JSON instead of a table")
}

func runCaptures(cmd *cobra.Command, args []string) error {
	if capturesLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	captures, err := st.Captures().List(capturesLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if capturesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if captures == nil {
			captures = []*store.Capture{}
		}
		return enc.Encode(captures)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tMOOD\tGESTURE\tID")
	for _, c := range captures {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.CreatedAt.Local().Format("2006-01-02 15:04:05"), c.Mood, c.Gesture, c.ID)
	}
	return w.Flush()
}

func runPlugins(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	mgr := plugin.NewManager(cfg.Plugins.Dir)
	if err := mgr.Discover(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tCAPTURE\tPATH")
	for _, p := range mgr.List() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", p.Manifest.Name, p.Manifest.Version, p.Manifest.Handles(plugin.EventCapture), p.Path)
	}
	return w.Flush()
}
