// ABOUTME: Points commands for saved points of interest
// ABOUTME: Adds, lists and deletes emoji-marked places

package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/ui"
	"github.com/spf13/cobra"
)

var pointsCmd = &cobra.Command{
	Use:     "points",
	Aliases: []string{"p"},
	Short:   "List saved points of interest",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := store.Points.GetAll(ctxOf(cmd))
		if err != nil {
			return fmt.Errorf("failed to list points: %w", err)
		}
		if len(points) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No points saved yet. Use 'wander points add' to add one.")
			return nil
		}
		sort.Slice(points, func(i, j int) bool { return points[i].ID > points[j].ID })
		for _, p := range points {
			fmt.Fprintln(cmd.OutOrStdout(), formatPoint(p))
		}
		return nil
	},
}

var pointsAddCmd = &cobra.Command{
	Use:   "add <latitude> <longitude> <emoji>",
	Short: "Save a point of interest",
	Long: `Save a point of interest marked with an emoji.

Examples:
  wander points add 46.5581 7.9857 ⛺
  wander points add 46.5581 7.9857 🍄 --note "chanterelles under the beeches"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude: %w", err)
		}
		lng, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude: %w", err)
		}
		note, _ := cmd.Flags().GetString("note")

		p := models.NewPoint(lat, lng, args[2], note)
		if err := p.Validate(); err != nil {
			return err
		}
		if _, err := store.Points.Insert(ctxOf(cmd), p); err != nil {
			return fmt.Errorf("failed to save point: %w", err)
		}

		color.Green("✓ Saved %s", p.Emoji)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s @ (%.4f, %.4f)\n",
			color.New(color.Faint).Sprint(p.ID), p.Latitude, p.Longitude)
		return nil
	},
}

var pointsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a point of interest",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid point id %q", args[0])
		}
		if _, err := store.Points.Get(ctxOf(cmd), id); err != nil {
			return fmt.Errorf("point %d not found", id)
		}
		if err := store.Points.Delete(ctxOf(cmd), id); err != nil {
			return fmt.Errorf("failed to delete point: %w", err)
		}
		color.Green("✓ Deleted point %d", id)
		return nil
	},
}

func init() {
	pointsAddCmd.Flags().StringP("note", "n", "", "note to attach")
	pointsAddCmd.Flags().SetInterspersed(false)

	pointsCmd.AddCommand(pointsAddCmd, pointsDeleteCmd)
	rootCmd.AddCommand(pointsCmd)
}

func formatPoint(p *models.Point) string {
	line := fmt.Sprintf("%s %s  %s", p.Emoji,
		color.CyanString("(%.4f, %.4f)", p.Latitude, p.Longitude),
		color.New(color.Faint).Sprint(p.ID))
	if p.Note != "" {
		line += " " + p.Note
	}
	if p.ID > 0 {
		line += " " + color.New(color.Faint).Sprint(ui.FormatRelativeTime(time.UnixMilli(p.ID)))
	}
	return line
}
