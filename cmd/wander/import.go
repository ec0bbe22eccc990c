// ABOUTME: Import command for restoring data from YAML backup
// ABOUTME: Supports importing backup files created by the backup command

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/storage"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a YAML backup",
	Long: `Import points, parcels and trips from a YAML backup file.

This restores data from a backup created with 'wander backup'.
Records with the same id are overwritten; everything else is kept.

Examples:
  wander import wander.yaml
  wander import ~/backups/wander-20260701.yaml --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askYesNo(fmt.Sprintf("Import data from '%s'?", filename)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		summary, err := storage.ImportBackup(ctxOf(cmd), store, data)
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		color.Green("Import complete")
		fmt.Fprintf(cmd.OutOrStdout(), "  %d points, %d parcels, %d trips imported\n",
			summary.Points, summary.Parcels, summary.Trips)

		return nil
	},
}

func init() {
	importCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(importCmd)
}
