// ABOUTME: Tests for the Charm KV record store
// ABOUTME: Verifies collection isolation, overwrite and not-found behavior

package charm

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/storage"
)

func testClient(t *testing.T, name string) *Client {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("CHARM_DATA_DIR", tmpDir)

	client, err := NewTestClient(name)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRecordKey(t *testing.T) {
	if got := string(recordKey("trips", 1700000000000)); got != "trips:1700000000000" {
		t.Errorf("unexpected key %s", got)
	}
}

func TestPutAndGetRecord(t *testing.T) {
	client := testClient(t, "test-records")
	ctx := context.Background()

	if err := client.PutRecord(ctx, storage.CollectionTrips, 1, []byte(`{"id":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := client.GetRecord(ctx, storage.CollectionTrips, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `{"id":1}` {
		t.Errorf("unexpected data %s", data)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	client := testClient(t, "test-missing")

	_, err := client.GetRecord(context.Background(), storage.CollectionTrips, 99)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllRecords_IsolatesCollections(t *testing.T) {
	client := testClient(t, "test-isolation")
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		if err := client.PutRecord(ctx, storage.CollectionTrips, id, []byte(`{}`)); err != nil {
			t.Fatalf("put trip: %v", err)
		}
	}
	if err := client.PutRecord(ctx, storage.CollectionPoints, 1, []byte(`{}`)); err != nil {
		t.Fatalf("put point: %v", err)
	}

	trips, err := client.GetAllRecords(ctx, storage.CollectionTrips)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(trips) != 3 {
		t.Fatalf("expected 3 trips, got %d", len(trips))
	}
	for i, want := range []int64{1, 2, 3} {
		if trips[i].ID != want {
			t.Errorf("trip %d: expected id %d, got %d", i, want, trips[i].ID)
		}
	}
}

func TestDeleteAndClear(t *testing.T) {
	client := testClient(t, "test-delete")
	ctx := context.Background()

	_ = client.PutRecord(ctx, storage.CollectionParcels, 1, []byte(`{}`))
	_ = client.PutRecord(ctx, storage.CollectionParcels, 2, []byte(`{}`))
	_ = client.PutRecord(ctx, storage.CollectionPoints, 1, []byte(`{}`))

	if err := client.DeleteRecord(ctx, storage.CollectionParcels, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.ClearCollection(ctx, storage.CollectionParcels); err != nil {
		t.Fatalf("clear: %v", err)
	}

	parcels, err := client.GetAllRecords(ctx, storage.CollectionParcels)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(parcels) != 0 {
		t.Errorf("expected no parcels, got %d", len(parcels))
	}

	points, err := client.GetAllRecords(ctx, storage.CollectionPoints)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("expected points untouched, got %d", len(points))
	}
}

func TestStoreOverCharm(t *testing.T) {
	client := testClient(t, "test-store")
	ctx := context.Background()
	store := storage.NewStore(client)

	trip := &models.Trip{ID: 10, Points: []models.TrackPoint{{Latitude: 1, Longitude: 2}}}
	if err := store.Trips.Put(ctx, trip); err != nil {
		t.Fatalf("put trip: %v", err)
	}
	if _, err := store.UpdateTripNote(ctx, 10, "ridge"); err != nil {
		t.Fatalf("update note: %v", err)
	}

	got, err := store.Trips.Get(ctx, 10)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if got.Note != "ridge" {
		t.Errorf("expected note ridge, got %q", got.Note)
	}
}
