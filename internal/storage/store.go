// ABOUTME: Typed collections over a RecordStore backend
// ABOUTME: Exposes points, parcels and trips with put/getAll/delete/clear

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/harper/wander/internal/models"
	"github.com/samber/lo"
)

// Collection is a typed view of one named collection.
type Collection[T any] struct {
	name    string
	backend RecordStore
	id      func(*T) int64
	setID   func(*T, int64)

	insertMu sync.Mutex
}

// NewCollection creates a typed collection. id extracts the storage key from a
// value and setID assigns a new one.
func NewCollection[T any](backend RecordStore, name string, id func(*T) int64, setID func(*T, int64)) *Collection[T] {
	return &Collection[T]{name: name, backend: backend, id: id, setID: setID}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Put inserts or overwrites v under its id.
func (c *Collection[T]) Put(ctx context.Context, v *T) error {
	if c.backend.IsReadOnly() {
		return ErrReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", c.name, err)
	}
	return c.backend.PutRecord(ctx, c.name, c.id(v), data)
}

// Insert stores v as a new record. If its id is already taken, v is moved to
// the next free id, so records created in the same millisecond never replace
// each other. The id v ends up with is returned.
func (c *Collection[T]) Insert(ctx context.Context, v *T) (int64, error) {
	if c.backend.IsReadOnly() {
		return 0, ErrReadOnly
	}
	c.insertMu.Lock()
	defer c.insertMu.Unlock()

	id := c.id(v)
	for {
		_, err := c.backend.GetRecord(ctx, c.name, id)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return 0, err
		}
		id++
	}
	c.setID(v, id)
	if err := c.Put(ctx, v); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the record with id, or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id int64) (*T, error) {
	data, err := c.backend.GetRecord(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s record %d: %w", c.name, id, err)
	}
	return &v, nil
}

// GetAll returns every record in the collection. Order is unspecified.
func (c *Collection[T]) GetAll(ctx context.Context) ([]*T, error) {
	records, err := c.backend.GetAllRecords(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(records))
	for _, r := range records {
		var v T
		if err := json.Unmarshal(r.Data, &v); err != nil {
			return nil, fmt.Errorf("unmarshal %s record %d: %w", c.name, r.ID, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// Delete removes the record with id. Deleting a missing id is not an error.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	if c.backend.IsReadOnly() {
		return ErrReadOnly
	}
	return c.backend.DeleteRecord(ctx, c.name, id)
}

// Clear removes every record in the collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	if c.backend.IsReadOnly() {
		return ErrReadOnly
	}
	return c.backend.ClearCollection(ctx, c.name)
}

// Store groups the application's collections over one backend.
type Store struct {
	backend RecordStore

	Points  *Collection[models.Point]
	Parcels *Collection[models.Parcel]
	Trips   *Collection[models.Trip]
}

// NewStore wires the points, parcels and trips collections to backend.
func NewStore(backend RecordStore) *Store {
	return &Store{
		backend: backend,
		Points:  NewCollection(backend, CollectionPoints, (*models.Point).RecordID, (*models.Point).SetRecordID),
		Parcels: NewCollection(backend, CollectionParcels, (*models.Parcel).RecordID, (*models.Parcel).SetRecordID),
		Trips:   NewCollection(backend, CollectionTrips, (*models.Trip).RecordID, (*models.Trip).SetRecordID),
	}
}

// Backend returns the underlying record store.
func (s *Store) Backend() RecordStore {
	return s.backend
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ListTrips returns all trips, newest first.
func (s *Store) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	trips, err := s.Trips.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	SortTripsByRecency(trips)
	return trips, nil
}

// UpdateTripNote replaces the note on an existing trip.
func (s *Store) UpdateTripNote(ctx context.Context, id int64, note string) (*models.Trip, error) {
	trip, err := s.Trips.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get trip %d: %w", id, err)
	}
	trip.Note = note
	if err := s.Trips.Put(ctx, trip); err != nil {
		return nil, fmt.Errorf("save trip %d: %w", id, err)
	}
	return trip, nil
}

// Counts returns the number of records in each collection.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(Collections))
	for _, name := range Collections {
		records, err := s.backend.GetAllRecords(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = len(records)
	}
	return counts, nil
}

// SortTripsByRecency orders trips by id, newest first.
func SortTripsByRecency(trips []*models.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].ID > trips[j].ID
	})
}

// TripIDs returns the ids of trips in order.
func TripIDs(trips []*models.Trip) []int64 {
	return lo.Map(trips, func(t *models.Trip, _ int) int64 { return t.ID })
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
