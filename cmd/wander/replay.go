// ABOUTME: Replay command playing a recorded trip back in the terminal
// ABOUTME: Draws the trace at accelerated speed and exits when playback finishes

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/geojson"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/notify"
	"github.com/harper/wander/internal/replay"
	"github.com/harper/wander/internal/ui"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <id|latest>",
	Short: "Replay a trip at accelerated speed",
	Long: `Replay a recorded trip, drawing its trace segment by segment.

Examples:
  wander replay latest
  wander replay 1751364000000 --speedup 120
  wander replay latest --geojson replay.geojson`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replaySpeedup float64
	replayGeoJSON string
)

func init() {
	replayCmd.Flags().Float64Var(&replaySpeedup, "speedup", 0, "playback speed multiplier (default from config)")
	replayCmd.Flags().StringVar(&replayGeoJSON, "geojson", "", "write the replayed layers to this GeoJSON file")

	rootCmd.AddCommand(replayCmd)
}

// replayCanvas draws to several canvases.
type replayCanvas []replay.Canvas

func (c replayCanvas) ShowRoute(points []models.TrackPoint) {
	for _, cv := range c {
		cv.ShowRoute(points)
	}
}

func (c replayCanvas) MoveMarker(p models.TrackPoint) {
	for _, cv := range c {
		cv.MoveMarker(p)
	}
}

func (c replayCanvas) DrawTrace(from, to models.TrackPoint, color string) {
	for _, cv := range c {
		cv.DrawTrace(from, to, color)
	}
}

func (c replayCanvas) ClearLayers() {
	for _, cv := range c {
		cv.ClearLayers()
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	opts := appConfig.ReplayOptions()
	if replaySpeedup > 0 {
		opts.Speedup = replaySpeedup
	}

	canvas := replayCanvas{ui.NewTerminalTrace(cmd.OutOrStdout())}
	var recorder *geojson.TraceRecorder
	if replayGeoJSON != "" {
		recorder = geojson.NewTraceRecorder()
		canvas = append(canvas, recorder)
	}

	hub := notify.NewHub()
	finished := hub.Subscribe(1)
	defer hub.Unsubscribe(finished)

	player := replay.NewPlayer(canvas, hub, replay.WithOptions(opts))

	ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Replaying trip %d (%s, %s)\n",
		trip.ID, ui.FormatDistance(trip.Distance), ui.FormatDuration(trip.Duration))
	if err := player.Start(ctx, trip); err != nil {
		return err
	}
	player.Wait()

	select {
	case <-finished.C:
		color.Green("✓ Replay finished")
	default:
		color.Yellow("Replay stopped")
	}

	if recorder != nil {
		if err := writeGeoJSON(replayGeoJSON, recorder.FeatureCollection()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote replay layers to %s\n", replayGeoJSON)
	}
	return nil
}
