// ABOUTME: Data migration between wander storage backends
// ABOUTME: Copies every record of every collection from source to destination

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated records per collection.
type MigrateSummary struct {
	Points  int
	Parcels int
	Trips   int
}

// Total returns the number of migrated records.
func (m *MigrateSummary) Total() int {
	return m.Points + m.Parcels + m.Trips
}

// MigrateData copies all records from src to dst.
// Records are copied verbatim so ids and unknown fields survive.
// The destination should be empty before calling this function.
func MigrateData(ctx context.Context, src, dst RecordStore) (*MigrateSummary, error) {
	if dst.IsReadOnly() {
		return nil, ErrReadOnly
	}

	summary := &MigrateSummary{}

	for _, name := range Collections {
		records, err := src.GetAllRecords(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("list source %s: %w", name, err)
		}

		for _, r := range records {
			if err := dst.PutRecord(ctx, name, r.ID, r.Data); err != nil {
				return nil, fmt.Errorf("copy %s record %d: %w", name, r.ID, err)
			}
		}

		switch name {
		case CollectionPoints:
			summary.Points = len(records)
		case CollectionParcels:
			summary.Parcels = len(records)
		case CollectionTrips:
			summary.Trips = len(records)
		}
	}

	if err := dst.Sync(); err != nil {
		return nil, fmt.Errorf("sync destination: %w", err)
	}

	return summary, nil
}

// IsEmpty reports whether a backend holds no records in any collection.
func IsEmpty(ctx context.Context, rs RecordStore) (bool, error) {
	for _, name := range Collections {
		records, err := rs.GetAllRecords(ctx, name)
		if err != nil {
			return false, fmt.Errorf("list %s: %w", name, err)
		}
		if len(records) > 0 {
			return false, nil
		}
	}
	return true, nil
}
