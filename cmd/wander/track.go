// ABOUTME: Track command recording a trip from a positioning source
// ABOUTME: Offers crash recovery, prints the live trace and saves the trip on Ctrl-C or end of input

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/config"
	"github.com/harper/wander/internal/geojson"
	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/notify"
	"github.com/harper/wander/internal/positioning"
	"github.com/harper/wander/internal/state"
	"github.com/harper/wander/internal/target"
	"github.com/harper/wander/internal/tracking"
	"github.com/harper/wander/internal/ui"
	"github.com/harper/wander/internal/wakelock"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:     "track",
	Aliases: []string{"t", "record"},
	Short:   "Record a trip",
	Long: `Record a trip from a positioning source until Ctrl-C or the source ends.

The source is a gpsd address or a file of JSON fixes, one per line:
  {"lat":46.5,"lng":7.9,"alt":1200,"speed":1.4,"time":"2026-07-01T10:00:00Z"}

If an earlier recording was interrupted you are asked whether to resume it.

Examples:
  wander track
  wander track --source gpsd://192.168.1.20:2947
  wander track --source walk.jsonl --realtime
  gpspipe -w | jq -c 'select(.class=="TPV") | {lat, lng: .lon}' | wander track --source -
  wander track --resume --geojson live.geojson`,
	RunE: runTrack,
}

var (
	trackSource   string
	trackRealtime bool
	trackResume   bool
	trackDiscard  bool
	trackGeoJSON  string
)

func init() {
	trackCmd.Flags().StringVarP(&trackSource, "source", "s", "", "gpsd://host:port, a fix file, or - for stdin (default from config)")
	trackCmd.Flags().BoolVar(&trackRealtime, "realtime", false, "pace file sources by their timestamps")
	trackCmd.Flags().BoolVar(&trackResume, "resume", false, "resume an interrupted recording without asking")
	trackCmd.Flags().BoolVar(&trackDiscard, "discard", false, "discard an interrupted recording without asking")
	trackCmd.Flags().StringVar(&trackGeoJSON, "geojson", "", "also write the colored live trace to this GeoJSON file")
	trackCmd.MarkFlagsMutuallyExclusive("resume", "discard")

	rootCmd.AddCommand(trackCmd)
}

// openSource builds a positioning source from a --source value.
func openSource(where string, realtime bool) (positioning.Source, error) {
	switch {
	case where == "":
		return nil, errors.New("no positioning source configured")
	case strings.HasPrefix(where, "gpsd://"):
		return positioning.NewGPSD(strings.TrimPrefix(where, "gpsd://")), nil
	default:
		var opts []positioning.StreamOption
		if realtime {
			opts = append(opts, positioning.WithRealtime())
		}
		path := where
		if path != "-" {
			path = config.ExpandPath(path)
		}
		return positioning.NewStreamSource(positioning.FileOpener(path), opts...), nil
	}
}

// promptResume asks on in whether to resume snap.
func promptResume(in io.Reader, out io.Writer) tracking.ConfirmFunc {
	return func(snap *models.RecoverySnapshot) bool {
		fmt.Fprintf(out, "Resume recording started %s (%d points, %s)? [y/N] ",
			ui.FormatRelativeTime(snap.StartTime), len(snap.Path), ui.FormatDistance(snap.Distance))
		reader := bufio.NewReader(in)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		return response == "y" || response == "yes"
	}
}

// fanRenderer draws to several renderers.
type fanRenderer []tracking.Renderer

func (f fanRenderer) DrawSegment(from, to models.TrackPoint, color string) {
	for _, r := range f {
		r.DrawSegment(from, to, color)
	}
}

func (f fanRenderer) DrawPath(points []models.TrackPoint) {
	for _, r := range f {
		r.DrawPath(points)
	}
}

func (f fanRenderer) ClearTrace() {
	for _, r := range f {
		r.ClearTrace()
	}
}

func runTrack(cmd *cobra.Command, args []string) error {
	where := trackSource
	if where == "" {
		where = appConfig.Tracking.Source
	}
	source, err := openSource(where, trackRealtime)
	if err != nil {
		return err
	}

	slot, err := appConfig.OpenRecovery()
	if err != nil {
		return fmt.Errorf("failed to open recovery slot: %w", err)
	}
	defer func() { _ = slot.Close() }()

	out := cmd.OutOrStdout()
	hub := notify.NewHub()
	renderer := fanRenderer{ui.NewTerminalTrace(out)}
	var recorder *geojson.TraceRecorder
	if trackGeoJSON != "" {
		recorder = geojson.NewTraceRecorder()
		renderer = append(renderer, recorder)
	}

	engine, err := tracking.New(appConfig.EngineConfig(), tracking.Deps{
		Source:   source,
		Trips:    store.Trips,
		Recovery: slot,
		Renderer: renderer,
		WakeLock: wakelock.New(),
		Target:   target.NewChecker(appConfig.Targets, hub, nil),
		Hub:      hub,
		Logger:   log.Default(),
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := state.New(store, nil)
	if err := st.Load(ctx); err != nil {
		log.Warn("could not load saved data", log.ErrorField(err))
	}
	stopWatch := st.Watch(ctx, hub)
	defer stopWatch()

	events := hub.Subscribe(notify.DefaultBuffer)
	defer hub.Unsubscribe(events)
	go announce(out, events)

	resumed, err := offerRecovery(ctx, cmd, engine, where)
	if err != nil {
		return err
	}
	if !resumed {
		if err := engine.Start(ctx); err != nil {
			return fmt.Errorf("failed to start recording: %w", err)
		}
	}
	color.Green("● Recording from %s (Ctrl-C to finish)", where)

	select {
	case <-ctx.Done():
	case <-engine.SourceClosed():
	}

	trip, err := engine.Stop(context.Background())
	if errors.Is(err, tracking.ErrTripNotSaved) {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "✗ Trip could not be saved. Nothing was written.")
		return err
	}
	if err != nil {
		return err
	}
	if trip == nil {
		fmt.Fprintln(out, "No positions received; nothing recorded.")
		return nil
	}

	color.Green("✓ Trip saved")
	fmt.Fprint(out, ui.FormatTripDetail(trip))

	if err := st.ReloadTrips(context.Background()); err == nil {
		stats := st.Stats()
		fmt.Fprintf(out, "%s\n", color.New(color.Faint).Sprintf("%d trips, %s in total",
			stats.Trips, ui.FormatDistance(stats.TotalKm)))
	}

	if recorder != nil {
		if err := writeGeoJSON(trackGeoJSON, recorder.FeatureCollection()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote live trace to %s\n", trackGeoJSON)
	}
	return nil
}

// offerRecovery applies --resume/--discard or prompts. With stdin as the
// fix source there is no prompt and the snapshot is left alone.
func offerRecovery(ctx context.Context, cmd *cobra.Command, engine *tracking.Engine, where string) (bool, error) {
	switch {
	case trackResume:
		return engine.OfferRecovery(ctx, tracking.ConfirmFunc(func(*models.RecoverySnapshot) bool { return true }))
	case trackDiscard:
		return engine.OfferRecovery(ctx, nil)
	case where == "-":
		snap, err := engine.PendingRecovery(ctx)
		if err != nil {
			return false, err
		}
		if snap != nil {
			color.Yellow("⚠ An interrupted recording exists; rerun with --resume or --discard to handle it.")
		}
		return false, nil
	default:
		return engine.OfferRecovery(ctx, promptResume(cmd.InOrStdin(), cmd.OutOrStdout()))
	}
}

func announce(out io.Writer, l *notify.Listener) {
	for ev := range l.C {
		if e, ok := ev.(notify.TargetReached); ok {
			fmt.Fprintln(out, color.MagentaString("★ Reached today's target: %s (%.0f m)", e.Name, e.Distance))
		}
	}
}
