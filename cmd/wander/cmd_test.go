// ABOUTME: Tests for CLI commands
// ABOUTME: Covers metadata, parsing helpers and end-to-end runs against an in-memory store

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/wander/internal/config"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/storage"
	"github.com/harper/wander/internal/tracking"
)

// testStore points the command globals at a fresh in-memory store and a
// config rooted in a temp directory.
func testStore(t *testing.T) {
	t.Helper()
	store = storage.NewStore(storage.NewMemoryDB())
	appConfig = config.Default()
	appConfig.DataDir = t.TempDir()
	appConfig.Recovery.Backend = config.RecoveryFile
	t.Cleanup(func() {
		store = nil
		appConfig = nil
	})
}

func saveTrip(t *testing.T, end time.Time) *models.Trip {
	t.Helper()
	points := []models.TrackPoint{
		{Latitude: 46.5, Longitude: 7.9, Speed: 1.2, Altitude: models.Float(1200)},
		{Latitude: 46.501, Longitude: 7.9, Speed: 1.3, Altitude: models.Float(1210)},
		{Latitude: 46.502, Longitude: 7.9, Speed: 1.4, Altitude: models.Float(1205)},
	}
	trip, err := models.NewTrip(points, end.Add(-10*time.Minute), end, 0.22, 10, 5)
	if err != nil {
		t.Fatalf("NewTrip: %v", err)
	}
	if err := store.Trips.Put(context.Background(), trip); err != nil {
		t.Fatalf("save trip: %v", err)
	}
	return trip
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func TestRootCmd_Metadata(t *testing.T) {
	if rootCmd.Use != "wander" {
		t.Errorf("expected Use 'wander', got %q", rootCmd.Use)
	}
	if !strings.Contains(rootCmd.Long, "Record trips") {
		t.Error("expected description in Long")
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("config flag not found")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"track", "trips", "points", "parcels", "replay", "export", "backup", "import", "migrate", "mcp", "status"} {
		if !contains(names, want) {
			t.Errorf("expected subcommand %q, got %v", want, names)
		}
	}
}

func TestTrackCmd_Flags(t *testing.T) {
	for _, name := range []string{"source", "realtime", "resume", "discard", "geojson"} {
		if trackCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not found", name)
		}
	}
	if trackCmd.Flags().Lookup("source").Shorthand != "s" {
		t.Error("expected source shorthand 's'")
	}
	if !contains(trackCmd.Aliases, "record") {
		t.Error("expected alias 'record'")
	}
}

func TestOpenSource(t *testing.T) {
	if _, err := openSource("", false); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := openSource("gpsd://127.0.0.1:2947", false); err != nil {
		t.Errorf("gpsd source: %v", err)
	}
	if _, err := openSource("walk.jsonl", true); err != nil {
		t.Errorf("file source: %v", err)
	}
}

func TestPromptResume(t *testing.T) {
	snap := &models.RecoverySnapshot{
		Path:      []models.TrackPoint{{Latitude: 1, Longitude: 2}},
		StartTime: time.Now().Add(-time.Hour),
		Distance:  1.5,
	}
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := promptResume(strings.NewReader(tt.input), &out).ConfirmResume(snap)
		if got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "1 points") {
			t.Errorf("prompt missing point count: %q", out.String())
		}
	}
}

func TestParseVertices(t *testing.T) {
	got, err := parseVertices([]string{"46.5,7.9", " 46.6 , 7.8 "})
	if err != nil {
		t.Fatalf("parseVertices: %v", err)
	}
	if len(got) != 2 || got[1][0] != 46.6 || got[1][1] != 7.8 {
		t.Errorf("unexpected vertices: %v", got)
	}

	for _, bad := range []string{"46.5", "a,7", "46.5,b", "91,0"} {
		if _, err := parseVertices([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1m", 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.input)
		if err != nil {
			t.Fatalf("parseDuration(%q): %v", tt.input, err)
		}
		ago := time.Since(got)
		if ago < tt.want-time.Minute || ago > tt.want+time.Minute {
			t.Errorf("parseDuration(%q) = %v ago, want about %v", tt.input, ago, tt.want)
		}
	}
	if _, err := parseDuration("3x"); err == nil {
		t.Error("expected error for invalid unit")
	}
}

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("", "2026-06-01", "2026-06-30")
	if err != nil {
		t.Fatalf("parseWindow: %v", err)
	}
	if !w.contains(time.Date(2026, 6, 30, 18, 0, 0, 0, time.UTC)) {
		t.Error("expected end day to be included")
	}
	if w.contains(time.Date(2026, 5, 31, 23, 0, 0, 0, time.UTC)) {
		t.Error("expected day before range to be excluded")
	}
	if _, err := parseWindow("", "June", ""); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestPointsAdd_Integration(t *testing.T) {
	testStore(t)
	var out bytes.Buffer
	pointsAddCmd.SetOut(&out)
	defer pointsAddCmd.SetOut(nil)

	if err := pointsAddCmd.RunE(pointsAddCmd, []string{"46.5581", "7.9857", "⛺"}); err != nil {
		t.Fatalf("points add: %v", err)
	}
	points, err := store.Points.GetAll(context.Background())
	if err != nil {
		t.Fatalf("list points: %v", err)
	}
	if len(points) != 1 || points[0].Emoji != "⛺" {
		t.Fatalf("unexpected points: %+v", points)
	}

	if err := pointsAddCmd.RunE(pointsAddCmd, []string{"95", "7", "⛺"}); err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}

func TestParcelsAdd_Integration(t *testing.T) {
	testStore(t)
	parcelsAddCmd.Flags().Set("vertex", "46.50,7.90")
	parcelsAddCmd.Flags().Set("vertex", "46.50,7.91")
	parcelsAddCmd.Flags().Set("vertex", "46.51,7.91")
	defer func() {
		_ = parcelsAddCmd.Flags().Lookup("vertex").Value.(interface{ Replace([]string) error }).Replace(nil)
	}()

	if err := parcelsAddCmd.RunE(parcelsAddCmd, []string{"orchard"}); err != nil {
		t.Fatalf("parcels add: %v", err)
	}
	parcels, err := store.Parcels.GetAll(context.Background())
	if err != nil {
		t.Fatalf("list parcels: %v", err)
	}
	if len(parcels) != 1 || parcels[0].Name != "orchard" || len(parcels[0].Boundary) != 3 {
		t.Fatalf("unexpected parcels: %+v", parcels)
	}
}

func TestTrips_Integration(t *testing.T) {
	testStore(t)
	older := saveTrip(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	newer := saveTrip(t, time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC))

	var out bytes.Buffer
	tripsCmd.SetOut(&out)
	defer tripsCmd.SetOut(nil)
	if err := tripsCmd.RunE(tripsCmd, nil); err != nil {
		t.Fatalf("trips: %v", err)
	}
	if !strings.Contains(out.String(), "2 trips") {
		t.Errorf("expected stats footer, got %q", out.String())
	}

	latest, err := resolveTrip(context.Background(), "latest")
	if err != nil {
		t.Fatalf("resolve latest: %v", err)
	}
	if latest.ID != newer.ID {
		t.Errorf("latest = %d, want %d", latest.ID, newer.ID)
	}
	if _, err := resolveTrip(context.Background(), "12"); err == nil {
		t.Error("expected error for missing trip")
	}
	if _, err := resolveTrip(context.Background(), "abc"); err == nil {
		t.Error("expected error for invalid id")
	}

	if err := tripsNoteCmd.RunE(tripsNoteCmd, []string{"latest", "foggy", "ridge"}); err != nil {
		t.Fatalf("trips note: %v", err)
	}
	got, _ := store.Trips.Get(context.Background(), newer.ID)
	if got.Note != "foggy ridge" {
		t.Errorf("note = %q", got.Note)
	}

	tripsDeleteCmd.Flags().Set("confirm", "true")
	defer tripsDeleteCmd.Flags().Set("confirm", "false")
	if err := tripsDeleteCmd.RunE(tripsDeleteCmd, []string{"latest"}); err != nil {
		t.Fatalf("trips delete: %v", err)
	}
	trips, _ := store.ListTrips(context.Background())
	if len(trips) != 1 || trips[0].ID != older.ID {
		t.Errorf("expected only the older trip to remain, got %v", storage.TripIDs(trips))
	}
}

func TestExport_GeoJSONFile(t *testing.T) {
	testStore(t)
	saveTrip(t, time.Now())
	output := filepath.Join(t.TempDir(), "trip.geojson")

	exportCmd.Flags().Set("output", output)
	exportCmd.Flags().Set("segments", "true")
	defer func() {
		exportCmd.Flags().Set("output", "")
		exportCmd.Flags().Set("segments", "false")
	}()

	if err := exportCmd.RunE(exportCmd, []string{"latest"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"FeatureCollection"`) || !strings.Contains(string(data), `"stroke"`) {
		t.Errorf("unexpected GeoJSON: %s", data)
	}
}

func TestExport_EmptyStore(t *testing.T) {
	testStore(t)
	if err := exportCmd.RunE(exportCmd, nil); err == nil {
		t.Error("expected error exporting nothing")
	}
}

func TestBackupImport_RoundTrip(t *testing.T) {
	testStore(t)
	trip := saveTrip(t, time.Now())
	output := filepath.Join(t.TempDir(), "backup.yaml")

	backupCmd.Flags().Set("output", output)
	defer backupCmd.Flags().Set("output", "")
	if err := backupCmd.RunE(backupCmd, nil); err != nil {
		t.Fatalf("backup: %v", err)
	}

	store = storage.NewStore(storage.NewMemoryDB())
	importCmd.Flags().Set("confirm", "true")
	defer importCmd.Flags().Set("confirm", "false")
	if err := importCmd.RunE(importCmd, []string{output}); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := store.Trips.Get(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("trip not restored: %v", err)
	}
	if len(got.Points) != len(trip.Points) {
		t.Errorf("restored %d points, want %d", len(got.Points), len(trip.Points))
	}
}

func TestMigrate_SameBackend(t *testing.T) {
	testStore(t)
	migrateTo = config.BackendSQLite
	defer func() { migrateTo = "" }()
	if err := migrateCmd.RunE(migrateCmd, nil); err == nil {
		t.Error("expected error migrating to the current backend")
	}
}

func TestMigrate_InvalidBackend(t *testing.T) {
	testStore(t)
	migrateTo = "markdown"
	defer func() { migrateTo = "" }()
	if err := migrateCmd.RunE(migrateCmd, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestReplay_Integration(t *testing.T) {
	testStore(t)
	saveTrip(t, time.Now())
	appConfig.Replay.Frame = time.Millisecond
	appConfig.Replay.MinDuration = 10 * time.Millisecond
	appConfig.Replay.MaxDuration = 20 * time.Millisecond
	replayGeoJSON = filepath.Join(t.TempDir(), "replay.geojson")
	defer func() { replayGeoJSON = "" }()

	var out bytes.Buffer
	replayCmd.SetOut(&out)
	defer replayCmd.SetOut(nil)

	if err := replayCmd.RunE(replayCmd, []string{"latest"}); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out.String(), "Replaying trip") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if _, err := os.Stat(replayGeoJSON); err != nil {
		t.Errorf("replay layers not written: %v", err)
	}
}

func TestTrack_Integration(t *testing.T) {
	testStore(t)
	fixes := `{"lat":46.5,"lng":7.9,"alt":1200,"speed":1.2,"time":"2026-07-01T10:00:00Z"}
{"lat":46.501,"lng":7.9,"alt":1210,"speed":1.3,"time":"2026-07-01T10:01:00Z"}
{"lat":46.502,"lng":7.9,"alt":1205,"speed":1.4,"time":"2026-07-01T10:02:00Z"}
`
	source := filepath.Join(t.TempDir(), "walk.jsonl")
	if err := os.WriteFile(source, []byte(fixes), 0o600); err != nil {
		t.Fatalf("write fixes: %v", err)
	}
	trackSource = source
	trackDiscard = true
	defer func() {
		trackSource = ""
		trackDiscard = false
	}()

	var out bytes.Buffer
	trackCmd.SetOut(&out)
	defer trackCmd.SetOut(nil)

	if err := trackCmd.RunE(trackCmd, nil); err != nil {
		t.Fatalf("track: %v", err)
	}
	trips, err := store.ListTrips(context.Background())
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	if len(trips[0].Points) != 3 {
		t.Errorf("expected 3 points, got %d", len(trips[0].Points))
	}
}

func TestTrack_UnsavedTrip(t *testing.T) {
	testStore(t)
	source := filepath.Join(t.TempDir(), "walk.jsonl")
	if err := os.WriteFile(source, []byte(`{"lat":46.5,"lng":7.9}`+"\n"), 0o600); err != nil {
		t.Fatalf("write fixes: %v", err)
	}
	trackSource = source
	defer func() { trackSource = "" }()

	store.Backend().(*storage.MemoryDB).SetReadOnly(true)

	err := trackCmd.RunE(trackCmd, nil)
	if err == nil || !strings.Contains(err.Error(), tracking.ErrTripNotSaved.Error()) {
		t.Fatalf("expected unsaved trip error, got %v", err)
	}
}
