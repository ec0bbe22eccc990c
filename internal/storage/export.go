// ABOUTME: Export and import functionality for wander data
// ABOUTME: Supports YAML backup format and markdown trip summaries

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harper/wander/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// BackupTool identifies backups written by this program.
const BackupTool = "wander"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string           `yaml:"version"`
	ExportedAt time.Time        `yaml:"exported_at"`
	Tool       string           `yaml:"tool"`
	Points     []*models.Point  `yaml:"points"`
	Parcels    []*models.Parcel `yaml:"parcels"`
	Trips      []*models.Trip   `yaml:"trips"`
}

// ImportSummary holds counts of imported records.
type ImportSummary struct {
	Points  int
	Parcels int
	Trips   int
}

// ExportToYAML exports all collections to YAML format.
func ExportToYAML(ctx context.Context, store *Store) ([]byte, error) {
	points, err := store.Points.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	parcels, err := store.Parcels.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	trips, err := store.ListTrips(ctx)
	if err != nil {
		return nil, err
	}

	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       BackupTool,
		Points:     points,
		Parcels:    parcels,
		Trips:      trips,
	}

	return yaml.Marshal(backup)
}

// ImportFromYAML restores records from a YAML backup.
// Records are written with put semantics, so re-importing the same backup is idempotent.
func ImportFromYAML(ctx context.Context, store *Store, data []byte) (*ImportSummary, error) {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != BackupTool {
		return nil, fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, BackupTool)
	}

	summary := &ImportSummary{}

	for _, p := range backup.Points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid point %d: %w", p.ID, err)
		}
		if err := store.Points.Put(ctx, p); err != nil {
			return nil, fmt.Errorf("put point %d: %w", p.ID, err)
		}
		summary.Points++
	}

	for _, p := range backup.Parcels {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid parcel %d: %w", p.ID, err)
		}
		if err := store.Parcels.Put(ctx, p); err != nil {
			return nil, fmt.Errorf("put parcel %d: %w", p.ID, err)
		}
		summary.Parcels++
	}

	for _, trip := range backup.Trips {
		if err := trip.Validate(); err != nil {
			return nil, fmt.Errorf("invalid trip %d: %w", trip.ID, err)
		}
		if err := store.Trips.Put(ctx, trip); err != nil {
			return nil, fmt.Errorf("put trip %d: %w", trip.ID, err)
		}
		summary.Trips++
	}

	return summary, nil
}

// ExportToMarkdown renders a trip log as a markdown table, newest first.
func ExportToMarkdown(ctx context.Context, store *Store) ([]byte, error) {
	trips, err := store.ListTrips(ctx)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder

	now := time.Now().UTC()
	sb.WriteString(fmt.Sprintf("# Trip Log - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(trips) == 0 {
		sb.WriteString("No trips recorded.\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| Date | Duration | Distance | Gain | Loss | Points | Note |\n")
	sb.WriteString("|------|----------|----------|------|------|--------|------|\n")

	for _, trip := range trips {
		note := "-"
		if trip.Note != "" {
			note = strings.ReplaceAll(trip.Note, "|", "\\|")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f km | %d m | %d m | %d | %s |\n",
			trip.Time().Local().Format("2006-01-02 15:04"),
			time.Duration(trip.Duration)*time.Millisecond,
			trip.Distance, trip.ElevationGain, trip.ElevationLoss, len(trip.Points), note))
	}

	return []byte(sb.String()), nil
}

// ExportBackup creates a YAML backup (alias for ExportToYAML).
func ExportBackup(ctx context.Context, store *Store) ([]byte, error) {
	return ExportToYAML(ctx, store)
}

// ImportBackup restores from a YAML backup (alias for ImportFromYAML).
func ImportBackup(ctx context.Context, store *Store, data []byte) (*ImportSummary, error) {
	return ImportFromYAML(ctx, store, data)
}
