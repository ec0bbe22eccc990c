// ABOUTME: Unit tests for data models
// ABOUTME: Tests constructors, validators, and model methods

package models

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewTrip(t *testing.T) {
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	points := []TrackPoint{
		{Latitude: 48.1, Longitude: 11.5, Altitude: Float(520)},
		{Latitude: 48.2, Longitude: 11.6},
	}

	trip, err := NewTrip(points, start, end, 1.25, 3, 1)
	if err != nil {
		t.Fatalf("NewTrip failed: %v", err)
	}

	if trip.ID != end.UnixMilli() {
		t.Errorf("expected ID %d, got %d", end.UnixMilli(), trip.ID)
	}
	if trip.Duration != 90000 {
		t.Errorf("expected duration 90000ms, got %d", trip.Duration)
	}
	if trip.Distance != 1.25 {
		t.Errorf("expected distance 1.25, got %f", trip.Distance)
	}
	if trip.ElevationGain != 3 || trip.ElevationLoss != 1 {
		t.Errorf("unexpected elevation %d/%d", trip.ElevationGain, trip.ElevationLoss)
	}
	if !trip.Time().Equal(end) {
		t.Errorf("expected date %v, got %v", end, trip.Time())
	}

	// The trip must not alias the caller's slice.
	points[0].Latitude = 0
	if trip.Points[0].Latitude != 48.1 {
		t.Error("trip points alias the input slice")
	}
}

func TestNewTrip_EmptyPath(t *testing.T) {
	now := time.Now()
	_, err := NewTrip(nil, now, now, 0, 0, 0)
	if !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}

func TestTripValidate(t *testing.T) {
	valid := &Trip{ID: 1, Points: []TrackPoint{{Latitude: 1, Longitude: 2}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid trip, got %v", err)
	}

	empty := &Trip{ID: 1}
	if !errors.Is(empty.Validate(), ErrEmptyPath) {
		t.Error("expected ErrEmptyPath for empty trip")
	}

	bad := &Trip{ID: 1, Points: []TrackPoint{{Latitude: 91, Longitude: 0}}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out of range latitude")
	}

	negative := &Trip{ID: 1, Duration: -1, Points: []TrackPoint{{}}}
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestTrackPointJSON(t *testing.T) {
	p := TrackPoint{Latitude: 1.5, Longitude: 2.5, Speed: 3}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"lat":1.5,"lng":2.5,"alt":null,"speed":3}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestTripJSON_LegacyWithoutLoss(t *testing.T) {
	legacy := `{"id":1700000000000,"date":"2023-11-14T22:13:20Z","duration":5000,"distance":0.2,"points":[{"lat":1,"lng":2,"alt":null,"speed":0}],"elevationGain":4}`
	var trip Trip
	if err := json.Unmarshal([]byte(legacy), &trip); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if trip.ElevationLoss != 0 {
		t.Errorf("expected zero loss, got %d", trip.ElevationLoss)
	}
	if trip.ElevationGain != 4 {
		t.Errorf("expected gain 4, got %d", trip.ElevationGain)
	}
}

func TestHasAltitude(t *testing.T) {
	tests := []struct {
		name string
		alt  *float64
		want bool
	}{
		{"nil", nil, false},
		{"zero", Float(0), false},
		{"positive", Float(12.5), true},
		{"negative", Float(-3), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := TrackPoint{Altitude: tt.alt}
			if got := p.HasAltitude(); got != tt.want {
				t.Errorf("HasAltitude() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 41.8781, -87.6298, false},
		{"edges", 90, 180, false},
		{"lat too high", 90.1, 0, true},
		{"lng too low", 0, -180.1, true},
		{"nan", math.NaN(), 0, true},
		{"inf", 0, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v, %v) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("orchard"); err != nil {
		t.Errorf("expected valid name, got %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Error("expected error for whitespace name")
	}
	if err := ValidateName(strings.Repeat("a", 256)); err == nil {
		t.Error("expected error for long name")
	}
}

func TestPointValidate(t *testing.T) {
	p := NewPoint(52.52, 13.40, "🍄", "chanterelles")
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid point, got %v", err)
	}
	if p.ID == 0 || p.Date == "" {
		t.Error("expected ID and date to be set")
	}

	p.Emoji = ""
	if err := p.Validate(); err == nil {
		t.Error("expected error for missing emoji")
	}

	p.Emoji = "🌲"
	p.Latitude = 100
	if err := p.Validate(); err == nil {
		t.Error("expected error for bad latitude")
	}
}

func TestParcelValidate(t *testing.T) {
	p := NewParcel("meadow", [][2]float64{{1, 1}, {1, 2}, {2, 2}})
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid parcel, got %v", err)
	}

	p.Boundary = p.Boundary[:2]
	if err := p.Validate(); err == nil {
		t.Error("expected error for degenerate boundary")
	}

	p.Boundary = [][2]float64{{1, 1}, {1, 200}, {2, 2}}
	if err := p.Validate(); err == nil {
		t.Error("expected error for bad vertex")
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	if NewSessionID() == NewSessionID() {
		t.Error("expected unique session IDs")
	}
}
