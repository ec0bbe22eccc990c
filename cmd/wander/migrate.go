// ABOUTME: Migration command for copying wander data between storage backends
// ABOUTME: Supports sqlite-to-charm and charm-to-sqlite with an emptiness check

package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/wander/internal/charm"
	"github.com/harper/wander/internal/config"
	"github.com/harper/wander/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
	Long: `Copy all points, parcels and trips from the configured backend to another one.

Does NOT update the config file; verify the migration was successful and
then change the backend setting.

Examples:
  wander migrate --to charm
  wander migrate --to sqlite --data-dir ~/wander-sqlite
  wander migrate --to sqlite --force`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var (
	migrateTo      string
	migrateDataDir string
	migrateForce   bool
)

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "target data directory for sqlite (defaults to current data_dir)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "allow writing into a non-empty target")
	_ = migrateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sourceBackend := appConfig.GetBackend()
	targetBackend := migrateTo

	if targetBackend != config.BackendSQLite && targetBackend != config.BackendCharm {
		return fmt.Errorf("invalid target backend %q: must be %q or %q", targetBackend, config.BackendSQLite, config.BackendCharm)
	}
	if targetBackend == sourceBackend {
		return fmt.Errorf("target backend %q is the same as the current backend", targetBackend)
	}

	targetDataDir := appConfig.GetDataDir()
	if migrateDataDir != "" {
		targetDataDir = config.ExpandPath(migrateDataDir)
	}

	dst, err := openMigrateBackend(targetBackend, targetDataDir)
	if err != nil {
		return fmt.Errorf("open target storage (%s): %w", targetBackend, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing target storage: %v\n", cerr)
		}
	}()

	ctx := ctxOf(cmd)
	empty, err := storage.IsEmpty(ctx, dst)
	if err != nil {
		return fmt.Errorf("check target storage: %w", err)
	}
	if !empty && !migrateForce {
		return fmt.Errorf("target %s storage is not empty; use --force to merge into it", targetBackend)
	}

	out := cmd.OutOrStdout()
	color.Yellow("Migrating wander data:")
	fmt.Fprintf(out, "  Source:  %s\n", sourceBackend)
	fmt.Fprintf(out, "  Target:  %s (%s)\n", targetBackend, targetDataDir)
	fmt.Fprintln(out)

	summary, err := storage.MigrateData(ctx, store.Backend(), dst)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("Migration complete!")
	fmt.Fprintf(out, "  Points:  %d\n", summary.Points)
	fmt.Fprintf(out, "  Parcels: %d\n", summary.Parcels)
	fmt.Fprintf(out, "  Trips:   %d\n", summary.Trips)
	fmt.Fprintln(out)
	color.Yellow("Note: the config file was NOT updated. To switch to the new backend, edit:")
	fmt.Fprintf(out, "  %s\n", config.GetConfigPath())
	fmt.Fprintf(out, "  Set backend: %s", targetBackend)
	if migrateDataDir != "" {
		fmt.Fprintf(out, " and data_dir: %s", migrateDataDir)
	}
	fmt.Fprintln(out)

	return nil
}

// openMigrateBackend creates a record store for the given backend and data directory.
func openMigrateBackend(backend, dataDir string) (storage.RecordStore, error) {
	switch backend {
	case config.BackendSQLite:
		return storage.NewSQLiteDB(filepath.Join(dataDir, "wander.db"))
	case config.BackendCharm:
		return charm.NewClient(&charm.Config{CharmHost: appConfig.Charm.Host, AutoSync: true})
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}
