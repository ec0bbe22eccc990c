// ABOUTME: Trips commands for browsing and editing recorded trips
// ABOUTME: Lists, shows, annotates, deletes and clears trips

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/state"
	"github.com/harper/wander/internal/storage"
	"github.com/harper/wander/internal/ui"
	"github.com/spf13/cobra"
)

var tripsCmd = &cobra.Command{
	Use:     "trips",
	Aliases: []string{"ls"},
	Short:   "List recorded trips",
	Long: `List recorded trips, newest first.

Examples:
  wander trips
  wander trips --limit 5
  wander trips show latest
  wander trips note 1751364000000 "foggy ridge"
  wander trips delete 1751364000000`,
	Args: cobra.NoArgs,
	RunE: runTripsList,
}

var tripsShowCmd = &cobra.Command{
	Use:   "show <id|latest>",
	Short: "Show one trip in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trip, err := resolveTrip(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatTripDetail(trip))
		return nil
	},
}

var tripsNoteCmd = &cobra.Command{
	Use:   "note <id|latest> <text...>",
	Short: "Set the note on a trip (empty text clears it)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trip, err := resolveTrip(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		note := strings.Join(args[1:], " ")
		updated, err := store.UpdateTripNote(ctxOf(cmd), trip.ID, note)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		color.Green("✓ Updated trip %d", updated.ID)
		return nil
	},
}

var tripsDeleteCmd = &cobra.Command{
	Use:     "delete <id|latest>",
	Aliases: []string{"rm"},
	Short:   "Delete a trip",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trip, err := resolveTrip(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askYesNo(fmt.Sprintf("Delete trip %d (%s)?", trip.ID, ui.FormatDistance(trip.Distance))) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := store.Trips.Delete(ctxOf(cmd), trip.ID); err != nil {
			return fmt.Errorf("failed to delete trip: %w", err)
		}
		color.Green("✓ Deleted trip %d", trip.ID)
		return nil
	},
}

var tripsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded trip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askYesNo("Delete ALL trips?") {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := store.Trips.Clear(ctxOf(cmd)); err != nil {
			return fmt.Errorf("failed to clear trips: %w", err)
		}
		color.Green("✓ All trips deleted")
		return nil
	},
}

func init() {
	tripsCmd.Flags().IntP("limit", "n", 0, "show at most n trips")
	tripsDeleteCmd.Flags().Bool("confirm", false, "skip confirmation prompt")
	tripsClearCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	tripsCmd.AddCommand(tripsShowCmd, tripsNoteCmd, tripsDeleteCmd, tripsClearCmd)
	rootCmd.AddCommand(tripsCmd)
}

func runTripsList(cmd *cobra.Command, args []string) error {
	st := state.New(store, nil)
	if err := st.Load(ctxOf(cmd)); err != nil {
		return fmt.Errorf("failed to list trips: %w", err)
	}

	trips := st.Trips()
	if len(trips) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No trips recorded yet. Use 'wander track' to record one.")
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	shown := trips
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, trip := range shown {
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatTrip(trip))
	}

	stats := st.Stats()
	fmt.Fprintln(cmd.OutOrStdout(), color.New(color.Faint).Sprintf("\n%d trips, %s, ↑%dm, %s moving",
		stats.Trips, ui.FormatDistance(stats.TotalKm), stats.TotalGain, ui.FormatDuration(stats.TotalDuration)))
	return nil
}

// ctxOf returns the command context, or a background context when unset.
func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resolveTrip finds a trip by id or the literal "latest".
func resolveTrip(ctx context.Context, ref string) (*models.Trip, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ref == "latest" {
		trips, err := store.ListTrips(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list trips: %w", err)
		}
		if len(trips) == 0 {
			return nil, fmt.Errorf("no trips recorded yet")
		}
		return trips[0], nil
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid trip id %q", ref)
	}
	trip, err := store.Trips.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("trip %d not found", id)
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// askYesNo prompts on stdin and reports whether the answer was yes.
func askYesNo(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
