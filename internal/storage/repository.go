// ABOUTME: Backend interface for the keyed record store
// ABOUTME: Enables testability and storage backend swapping

package storage

import "context"

// Collection names used by the application.
const (
	CollectionPoints  = "points"
	CollectionParcels = "parcels"
	CollectionTrips   = "trips"
)

// Collections lists every collection in a stable order.
var Collections = []string{CollectionPoints, CollectionParcels, CollectionTrips}

// Record is a raw stored value keyed by its numeric id.
type Record struct {
	ID   int64
	Data []byte
}

// RecordStore is a keyed document store partitioned into named collections.
// Values are opaque JSON documents. Put overwrites an existing id.
type RecordStore interface {
	PutRecord(ctx context.Context, collection string, id int64, data []byte) error
	GetRecord(ctx context.Context, collection string, id int64) ([]byte, error)
	GetAllRecords(ctx context.Context, collection string) ([]Record, error)
	DeleteRecord(ctx context.Context, collection string, id int64) error
	ClearCollection(ctx context.Context, collection string) error
	Close() error
	Sync() error
	IsReadOnly() bool
}

// Compile-time interface implementation check for the charm backend is in the charm package:
// var _ storage.RecordStore = (*charm.Client)(nil)
