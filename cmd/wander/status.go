// ABOUTME: Status command summarizing configuration and saved data
// ABOUTME: Shows backend, record counts, pending recovery, totals, moon phase and today's target

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/config"
	"github.com/harper/wander/internal/recovery"
	"github.com/harper/wander/internal/state"
	"github.com/harper/wander/internal/storage"
	"github.com/harper/wander/internal/target"
	"github.com/harper/wander/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and a summary of saved data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := ctxOf(cmd)
		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)

		path := cfgFile
		if path == "" {
			path = config.GetConfigPath()
		}
		fmt.Fprintf(out, "Config:   %s\n", path)
		fmt.Fprintf(out, "Backend:  %s %s\n", appConfig.GetBackend(), faint.Sprint(appConfig.GetDataDir()))

		counts, err := store.Counts(ctx)
		if err != nil {
			return fmt.Errorf("failed to count records: %w", err)
		}
		fmt.Fprintf(out, "Records:  %d trips, %d points, %d parcels\n",
			counts[storage.CollectionTrips], counts[storage.CollectionPoints], counts[storage.CollectionParcels])

		fmt.Fprintf(out, "Recovery: %s\n", recoveryStatus(cmd))

		st := state.New(store, nil)
		if err := st.Load(ctx); err != nil {
			return fmt.Errorf("failed to load data: %w", err)
		}
		stats := st.Stats()
		if stats.Trips > 0 {
			fmt.Fprintf(out, "Totals:   %s over %s, climbed %dm, longest %s\n",
				ui.FormatDistance(stats.TotalKm),
				ui.FormatDuration(stats.TotalDuration),
				stats.TotalGain,
				ui.FormatDistance(stats.LongestKm))
		}

		moon := st.MoonPhase()
		fmt.Fprintf(out, "Moon:     %s %s\n", moon.Name, faint.Sprintf("(day %.1f of %.1f)", moon.Age, state.SynodicMonthDays))

		if t, ok := target.ForDay(time.Now(), appConfig.Targets); ok {
			fmt.Fprintf(out, "Target:   %s %s\n", color.MagentaString(t.Name), faint.Sprintf("(%.5f, %.5f)", t.Latitude, t.Longitude))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func recoveryStatus(cmd *cobra.Command) string {
	slot, err := appConfig.OpenRecovery()
	if err != nil {
		return color.YellowString("unavailable (%v)", err)
	}
	defer func() { _ = slot.Close() }()

	snap, err := slot.Load(ctxOf(cmd))
	switch {
	case errors.Is(err, recovery.ErrNoSnapshot):
		return "none"
	case err != nil:
		return color.YellowString("unreadable (%v)", err)
	}
	return color.YellowString("interrupted recording from %s, %d points (run 'wander track' to resume)",
		ui.FormatRelativeTime(snap.StartTime), len(snap.Path))
}
