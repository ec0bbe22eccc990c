// ABOUTME: Concurrency tests for the Charm KV record store
// ABOUTME: Verifies separate clients can write to the same database at once

package charm

import (
	"context"
	"sync"
	"testing"

	"github.com/harper/wander/internal/storage"
)

func TestConcurrentClientsShareDatabase(t *testing.T) {
	// Each client stands in for a separate process (CLI and MCP server).
	seed := testClient(t, "wander-wal-test")
	ctx := context.Background()
	if err := seed.PutRecord(ctx, storage.CollectionPoints, 1, []byte(`{}`)); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	const clients = 3
	const writesPerClient = 5

	var wg sync.WaitGroup
	errs := make(chan error, clients*writesPerClient)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			client, err := NewTestClient("wander-wal-test")
			if err != nil {
				errs <- err
				return
			}
			for j := 0; j < writesPerClient; j++ {
				id := int64(n*writesPerClient + j + 1)
				if err := client.PutRecord(ctx, storage.CollectionTrips, id, []byte(`{}`)); err != nil {
					errs <- err
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		failures = append(failures, err)
	}
	if len(failures) > 0 {
		t.Fatalf("concurrent clients produced %d errors, first: %v", len(failures), failures[0])
	}

	trips, err := seed.GetAllRecords(ctx, storage.CollectionTrips)
	if err != nil {
		t.Fatalf("GetAllRecords: %v", err)
	}
	if len(trips) != clients*writesPerClient {
		t.Errorf("expected %d trips, got %d", clients*writesPerClient, len(trips))
	}
}
