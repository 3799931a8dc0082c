package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

const (
	keyCapture = 'c'
	keyQuit    = 'q'
	keyEsc     = 27
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the annotated camera feed in a desktop window",
	Long: `Opens a window with the live annotated feed.

Keys:
  c        capture the current mood
  q, Esc   exit`,
	RunE: runWindow,
}

func init() {
	rootCmd.AddCommand(windowCmd)
}

func runWindow(cmd *cobra.Command, args []string) error {
	a, _, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	window := gocv.NewWindow("moodlens")
	defer window.Close()

	ctrl := a.Controller()
	var last uint64
	for ctx.Err() == nil && a.Manager().Running() {
		if seq := a.Latest().Seq(); seq != last {
			if mat, ok := a.Latest().Clone(); ok {
				window.IMShow(mat)
				mat.Close()
				last = seq
			}
		}

		switch key := window.WaitKey(15); key {
		case keyCapture:
			if ev, ok := ctrl.Capture(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), ev.Message)
			}
		case keyQuit, keyEsc:
			ctrl.Exit()
			return nil
		}

		if window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			ctrl.Exit()
			return nil
		}
	}

	ctrl.Exit()
	return a.Manager().Err()
}
