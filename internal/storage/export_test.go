// ABOUTME: Tests for export and import functionality
// ABOUTME: Covers YAML backup format and markdown trip log

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/harper/wander/internal/models"
)

func seedStore(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	mustNoError(t, store.Points.Put(ctx, &models.Point{ID: 10, Latitude: 52.52, Longitude: 13.4, Emoji: "🍄", Note: "porcini"}))
	mustNoError(t, store.Parcels.Put(ctx, &models.Parcel{ID: 20, Name: "orchard", Boundary: [][2]float64{{1, 1}, {1, 2}, {2, 2}}}))

	trip := sampleTrip(1700000000000)
	trip.Note = "morning loop"
	mustNoError(t, store.Trips.Put(ctx, trip))
}

func TestExportToYAML(t *testing.T) {
	store := NewStore(testDB(t))
	seedStore(t, store)

	data, err := ExportToYAML(context.Background(), store)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	yamlStr := string(data)

	if !strings.Contains(yamlStr, "version: \"1.0\"") {
		t.Error("missing version header")
	}
	if !strings.Contains(yamlStr, "tool: wander") {
		t.Error("missing tool header")
	}
	if !strings.Contains(yamlStr, "exported_at:") {
		t.Error("missing exported_at header")
	}
	if !strings.Contains(yamlStr, "note: porcini") {
		t.Error("missing point note")
	}
	if !strings.Contains(yamlStr, "name: orchard") {
		t.Error("missing parcel name")
	}
	if !strings.Contains(yamlStr, "note: morning loop") {
		t.Error("missing trip note")
	}
	if !strings.Contains(yamlStr, "elevation_gain: 12") {
		t.Error("missing elevation gain")
	}
}

func TestImportFromYAML_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewStore(testDB(t))
	seedStore(t, src)

	data, err := ExportToYAML(ctx, src)
	mustNoError(t, err)

	dst := NewStore(NewMemoryDB())
	summary, err := ImportFromYAML(ctx, dst, data)
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	if summary.Points != 1 || summary.Parcels != 1 || summary.Trips != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}

	trip, err := dst.Trips.Get(ctx, 1700000000000)
	mustNoError(t, err)
	if trip.Note != "morning loop" {
		t.Errorf("expected note to survive, got %q", trip.Note)
	}
	if len(trip.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(trip.Points))
	}
	if trip.Points[0].Altitude == nil || *trip.Points[0].Altitude != 500 {
		t.Error("expected first altitude to survive")
	}
	if trip.Points[1].Altitude != nil {
		t.Error("expected missing altitude to stay nil")
	}

	// Importing twice does not duplicate.
	_, err = ImportFromYAML(ctx, dst, data)
	mustNoError(t, err)
	trips, err := dst.Trips.GetAll(ctx)
	mustNoError(t, err)
	if len(trips) != 1 {
		t.Errorf("expected 1 trip after re-import, got %d", len(trips))
	}
}

func TestImportFromYAML_WrongVersion(t *testing.T) {
	store := NewStore(NewMemoryDB())
	data := []byte("version: \"2.0\"\ntool: wander\n")

	_, err := ImportFromYAML(context.Background(), store, data)
	if err == nil || !strings.Contains(err.Error(), "unsupported backup version") {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestImportFromYAML_WrongTool(t *testing.T) {
	store := NewStore(NewMemoryDB())
	data := []byte("version: \"1.0\"\ntool: position\n")

	_, err := ImportFromYAML(context.Background(), store, data)
	if err == nil || !strings.Contains(err.Error(), "wrong tool") {
		t.Errorf("expected tool error, got %v", err)
	}
}

func TestImportFromYAML_InvalidYAML(t *testing.T) {
	store := NewStore(NewMemoryDB())
	_, err := ImportFromYAML(context.Background(), store, []byte("{{not yaml"))
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestImportFromYAML_RejectsEmptyTrip(t *testing.T) {
	store := NewStore(NewMemoryDB())
	data := []byte("version: \"1.0\"\ntool: wander\ntrips:\n  - id: 1\n    points: []\n")

	_, err := ImportFromYAML(context.Background(), store, data)
	if err == nil || !strings.Contains(err.Error(), "invalid trip 1") {
		t.Errorf("expected invalid trip error, got %v", err)
	}
}

func TestExportToMarkdown(t *testing.T) {
	store := NewStore(NewMemoryDB())
	seedStore(t, store)

	data, err := ExportToMarkdown(context.Background(), store)
	mustNoError(t, err)

	md := string(data)
	if !strings.HasPrefix(md, "# Trip Log - ") {
		t.Error("missing header")
	}
	if !strings.Contains(md, "1.50 km") {
		t.Error("missing distance")
	}
	if !strings.Contains(md, "1m0s") {
		t.Error("missing duration")
	}
	if !strings.Contains(md, "morning loop") {
		t.Error("missing note")
	}
}

func TestExportToMarkdown_Empty(t *testing.T) {
	store := NewStore(NewMemoryDB())

	data, err := ExportToMarkdown(context.Background(), store)
	mustNoError(t, err)
	if !strings.Contains(string(data), "No trips recorded.") {
		t.Error("expected empty message")
	}
}
