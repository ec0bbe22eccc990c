// ABOUTME: Parcels commands for user-drawn areas
// ABOUTME: Adds and lists named boundary polygons

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/models"
	"github.com/spf13/cobra"
)

var parcelsCmd = &cobra.Command{
	Use:   "parcels",
	Short: "List saved parcels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		parcels, err := store.Parcels.GetAll(ctxOf(cmd))
		if err != nil {
			return fmt.Errorf("failed to list parcels: %w", err)
		}
		if len(parcels) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No parcels saved yet.")
			return nil
		}
		for _, p := range parcels {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %d vertices  %s\n",
				color.GreenString(p.Name), len(p.Boundary), color.New(color.Faint).Sprint(p.ID))
		}
		return nil
	},
}

var parcelsAddCmd = &cobra.Command{
	Use:   "add <name> --vertex lat,lng --vertex lat,lng --vertex lat,lng",
	Short: "Save a parcel boundary",
	Long: `Save a named area given at least three vertices.

Examples:
  wander parcels add orchard --vertex 46.50,7.90 --vertex 46.50,7.91 --vertex 46.51,7.91`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("vertex")
		boundary, err := parseVertices(raw)
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		parcel := models.NewParcel(args[0], boundary)
		parcel.Note = note
		if err := parcel.Validate(); err != nil {
			return err
		}
		if _, err := store.Parcels.Insert(ctxOf(cmd), parcel); err != nil {
			return fmt.Errorf("failed to save parcel: %w", err)
		}
		color.Green("✓ Saved parcel %s", parcel.Name)
		return nil
	},
}

func init() {
	parcelsAddCmd.Flags().StringArray("vertex", nil, "boundary vertex as lat,lng (repeat)")
	parcelsAddCmd.Flags().StringP("note", "n", "", "note to attach")

	parcelsCmd.AddCommand(parcelsAddCmd)
	rootCmd.AddCommand(parcelsCmd)
}

// parseVertices turns "lat,lng" strings into validated boundary pairs.
func parseVertices(raw []string) ([][2]float64, error) {
	boundary := make([][2]float64, 0, len(raw))
	for _, v := range raw {
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid vertex %q: want lat,lng", v)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex %q: %w", v, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex %q: %w", v, err)
		}
		if err := models.ValidateCoordinates(lat, lng); err != nil {
			return nil, fmt.Errorf("invalid vertex %q: %w", v, err)
		}
		boundary = append(boundary, [2]float64{lat, lng})
	}
	return boundary, nil
}
