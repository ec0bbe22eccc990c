// ABOUTME: Export command for generating GeoJSON, markdown, and YAML output
// ABOUTME: Exports one trip or every saved record with optional time filtering

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/harper/wander/internal/geojson"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/storage"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// durationRegex matches relative duration strings like "24h", "7d", "1w", "1m".
var durationRegex = regexp.MustCompile(`^(\d+)([hdwm])$`)

var exportCmd = &cobra.Command{
	Use:     "export [id|latest]",
	Aliases: []string{"e"},
	Short:   "Export trips, points and parcels",
	Long: `Export saved data as GeoJSON, Markdown, or YAML.

Examples:
  # Export everything as GeoJSON
  wander export --format geojson

  # Export the latest trip with speed-colored segments
  wander export latest --segments --output walk.geojson

  # Export trips of the last week
  wander export --since 7d

  # Export trips in a date range
  wander export --from 2026-06-01 --to 2026-06-30

  # Markdown summary or YAML dump
  wander export --format markdown
  wander export --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "geojson" && format != "markdown" && format != "yaml" {
			return fmt.Errorf("unsupported format: %s (use 'geojson', 'markdown', or 'yaml')", format)
		}
		segments, _ := cmd.Flags().GetBool("segments")
		output, _ := cmd.Flags().GetString("output")

		since, _ := cmd.Flags().GetString("since")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		window, err := parseWindow(since, from, to)
		if err != nil {
			return err
		}

		ctx := ctxOf(cmd)
		switch format {
		case "markdown":
			data, err := storage.ExportToMarkdown(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to generate markdown: %w", err)
			}
			return writeOutput(cmd, output, data, "markdown")
		case "yaml":
			data, err := storage.ExportToYAML(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to generate YAML: %w", err)
			}
			return writeOutput(cmd, output, data, "YAML")
		}

		var fc *geojson.FeatureCollection
		if len(args) == 1 {
			trip, err := resolveTrip(ctx, args[0])
			if err != nil {
				return err
			}
			fc = geojson.TripToFeatureCollection(trip, segments)
		} else {
			fc, err = exportAll(ctx, window)
			if err != nil {
				return err
			}
		}
		if len(fc.Features) == 0 {
			return fmt.Errorf("nothing to export")
		}

		data, err := fc.ToJSONIndent()
		if err != nil {
			return fmt.Errorf("failed to generate GeoJSON: %w", err)
		}
		return writeOutput(cmd, output, data, fmt.Sprintf("%d features", len(fc.Features)))
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "geojson", "output format (geojson, markdown, yaml)")
	exportCmd.Flags().Bool("segments", false, "add speed-colored segments for a single trip")
	exportCmd.Flags().String("since", "", "relative time filter for trips (e.g., 24h, 7d, 1w)")
	exportCmd.Flags().String("from", "", "start date (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().String("to", "", "end date (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}

// timeWindow bounds trip start times; zero ends are open.
type timeWindow struct {
	from time.Time
	to   time.Time
}

func (w timeWindow) contains(t time.Time) bool {
	if !w.from.IsZero() && t.Before(w.from) {
		return false
	}
	if !w.to.IsZero() && t.After(w.to) {
		return false
	}
	return true
}

func parseWindow(since, from, to string) (timeWindow, error) {
	var w timeWindow
	var err error
	if since != "" {
		w.from, err = parseDuration(since)
		if err != nil {
			return w, fmt.Errorf("invalid --since value: %w", err)
		}
	}
	if from != "" {
		w.from, err = parseDate(from)
		if err != nil {
			return w, fmt.Errorf("invalid --from value: %w", err)
		}
	}
	if to != "" {
		w.to, err = parseDate(to)
		if err != nil {
			return w, fmt.Errorf("invalid --to value: %w", err)
		}
		// Set to end of day
		w.to = w.to.Add(24*time.Hour - time.Second)
	}
	return w, nil
}

// exportAll collects trips inside window plus every point and parcel.
func exportAll(ctx context.Context, window timeWindow) (*geojson.FeatureCollection, error) {
	trips, err := store.ListTrips(ctx)
	if err != nil {
		return nil, err
	}
	trips = lo.Filter(trips, func(t *models.Trip, _ int) bool { return window.contains(t.Time()) })

	points, err := store.Points.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}
	parcels, err := store.Parcels.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	return geojson.TripsToFeatureCollection(trips).Merge(
		geojson.PointsToFeatureCollection(points),
		geojson.ParcelsToFeatureCollection(parcels),
	), nil
}

func writeOutput(cmd *cobra.Command, output string, data []byte, what string) error {
	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for data export files
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s to %s\n", what, output)
	return nil
}

// writeGeoJSON writes fc to path, creating parent directories.
func writeGeoJSON(path string, fc *geojson.FeatureCollection) error {
	data, err := fc.ToJSONIndent()
	if err != nil {
		return fmt.Errorf("failed to generate GeoJSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for data export files
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// parseDuration parses relative duration strings like "24h", "7d", "1w".
func parseDuration(s string) (time.Time, error) {
	matches := durationRegex.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid duration format (use e.g., 24h, 7d, 1w)")
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number in duration '%s': %w", s, err)
	}

	var duration time.Duration
	switch matches[2] {
	case "h":
		duration = time.Duration(num) * time.Hour
	case "d":
		duration = time.Duration(num) * 24 * time.Hour
	case "w":
		duration = time.Duration(num) * 7 * 24 * time.Hour
	case "m":
		duration = time.Duration(num) * 30 * 24 * time.Hour
	}

	return time.Now().Add(-duration), nil
}

// parseDate parses date strings in RFC3339 or YYYY-MM-DD format.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD or RFC3339)")
}
