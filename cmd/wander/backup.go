// ABOUTME: Backup command for exporting data to YAML
// ABOUTME: Creates portable backup files of points, parcels and trips

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a YAML backup of all data",
	Long: `Create a YAML backup file containing all points, parcels and trips.

The backup file can be used to:
- Move data between machines
- Restore after data loss
- Import into a fresh database

Examples:
  wander backup --output wander.yaml
  wander backup -o ~/backups/wander-$(date +%Y%m%d).yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		ctx := ctxOf(cmd)

		data, err := storage.ExportBackup(ctx, store)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}

		if output == "" {
			output = fmt.Sprintf("wander-%s.yaml", time.Now().Format("20060102-150405"))
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for backup files
			return fmt.Errorf("failed to write backup: %w", err)
		}

		counts, _ := store.Counts(ctx)

		color.Green("Backup created: %s", output)
		fmt.Fprintf(cmd.OutOrStdout(), "  %d points, %d parcels, %d trips\n",
			counts[storage.CollectionPoints], counts[storage.CollectionParcels], counts[storage.CollectionTrips])

		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "output file (default: wander-YYYYMMDD-HHMMSS.yaml)")

	rootCmd.AddCommand(backupCmd)
}
