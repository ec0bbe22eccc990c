// ABOUTME: Unit tests for terminal UI formatting
// ABOUTME: Tests durations, distances, trip lines, relative times and the trace printer

package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"zero", 0, "00:00"},
		{"negative", -5000, "00:00"},
		{"seconds", 42_000, "00:42"},
		{"minutes_and_seconds", 754_000, "12:34"},
		{"just_under_hour", 3_599_999, "59:59"},
		{"exactly_hour", 3_600_000, "1h 00m"},
		{"hour_minute_second", 3_661_000, "1h 01m"},
		{"long", 10*3_600_000 + 5*60_000, "10h 05m"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDuration(tc.ms); got != tc.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
			}
		})
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{0, "0 m"},
		{0.4567, "457 m"},
		{1, "1.00 km"},
		{12.346, "12.35 km"},
		{-1, "0 m"},
	}
	for _, tc := range tests {
		if got := FormatDistance(tc.km); got != tc.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tc.km, got, tc.want)
		}
	}
}

func testTrip() *models.Trip {
	return &models.Trip{
		ID:            1751364000000,
		Date:          time.UnixMilli(1751364000000).UTC().Format(time.RFC3339Nano),
		Duration:      3_661_000,
		Distance:      5.25,
		ElevationGain: 120,
		ElevationLoss: 80,
		Note:          "ridge loop",
		Points: []models.TrackPoint{
			{Latitude: 46.5, Longitude: 7.9},
			{Latitude: 46.51, Longitude: 7.9},
		},
	}
}

func TestFormatTrip(t *testing.T) {
	output := FormatTrip(testTrip())
	for _, want := range []string{"1751364000000", "5.25 km", "1h 01m", "120m", "ridge loop"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestFormatTrip_Nil(t *testing.T) {
	if output := FormatTrip(nil); !strings.Contains(output, "invalid trip") {
		t.Errorf("expected nil trip message, got %q", output)
	}
}

func TestFormatTripDetail(t *testing.T) {
	output := FormatTripDetail(testTrip())
	for _, want := range []string{"Trip:", "1h 01m", "↑120m", "↓80m", "Points:", "ridge loop", "km/h"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected detail to contain %q, got %q", want, output)
		}
	}
}

func TestFormatTripDetail_NoNoteNoDuration(t *testing.T) {
	trip := testTrip()
	trip.Note = ""
	trip.Duration = 0
	output := FormatTripDetail(trip)
	if strings.Contains(output, "Note:") {
		t.Errorf("expected no note line, got %q", output)
	}
	if strings.Contains(output, "Avg:") {
		t.Errorf("expected no average speed line, got %q", output)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		contains string
	}{
		{"just_now", 30 * time.Second, "just now"},
		{"one_minute", 1 * time.Minute, "1 minute ago"},
		{"five_minutes", 5 * time.Minute, "5 minutes ago"},
		{"one_hour", 1 * time.Hour, "1 hour ago"},
		{"two_hours", 2 * time.Hour, "2 hours ago"},
		{"one_day", 25 * time.Hour, "1 day ago"},
		{"multiple_days", 72 * time.Hour, "3 days ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := time.Now().Add(-tc.duration)
			result := FormatRelativeTime(tm)
			if !strings.Contains(result, tc.contains) {
				t.Errorf("FormatRelativeTime for %v: expected to contain %q, got %q", tc.duration, tc.contains, result)
			}
		})
	}
}

func TestFormatRelativeTime_FutureTime(t *testing.T) {
	futureTime := time.Now().Add(1 * time.Hour)
	result := FormatRelativeTime(futureTime)
	if !strings.Contains(result, "future") {
		t.Errorf("expected future time message, got %q", result)
	}
}

func TestFormatRelativeTime_EdgeCases(t *testing.T) {
	// Test just under one minute
	tm := time.Now().Add(-59 * time.Second)
	result := FormatRelativeTime(tm)
	if !strings.Contains(result, "just now") {
		t.Errorf("59 seconds ago should be 'just now', got %q", result)
	}

	// Test exactly one minute
	tm = time.Now().Add(-60 * time.Second)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "minute") {
		t.Errorf("60 seconds ago should contain 'minute', got %q", result)
	}

	// Test 59 minutes
	tm = time.Now().Add(-59 * time.Minute)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "59 minutes") {
		t.Errorf("59 minutes ago should be '59 minutes ago', got %q", result)
	}

	// Test 23 hours
	tm = time.Now().Add(-23 * time.Hour)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "23 hours") {
		t.Errorf("23 hours ago should be '23 hours ago', got %q", result)
	}
}

func TestColorForHex_KnownBands(t *testing.T) {
	for b := geo.BandIdle; b <= geo.BandFast; b++ {
		if ColorForHex(b.Color()) == nil {
			t.Errorf("no color for band %s", b)
		}
	}
	if ColorForHex("#000000") == nil {
		t.Error("expected fallback color")
	}
}

func TestTerminalTrace_DrawsSegments(t *testing.T) {
	var buf bytes.Buffer
	trace := NewTerminalTrace(&buf)

	a := models.TrackPoint{Latitude: 46.5, Longitude: 7.9}
	b := models.TrackPoint{Latitude: 46.501, Longitude: 7.9, Speed: 1.5}
	trace.DrawSegment(a, b, geo.SpeedColor(geo.MpsToKmh(b.Speed)))

	if trace.Segments() != 1 {
		t.Errorf("expected 1 segment, got %d", trace.Segments())
	}
	if km := trace.DistanceKm(); km < 0.1 || km > 0.12 {
		t.Errorf("expected about 0.111 km, got %v", km)
	}
	if !strings.Contains(buf.String(), "5.4 km/h") {
		t.Errorf("expected speed in output, got %q", buf.String())
	}

	trace.ClearTrace()
	if trace.Segments() != 0 || trace.DistanceKm() != 0 {
		t.Error("expected clear to reset totals")
	}
}

func TestTerminalTrace_DrawPath(t *testing.T) {
	var buf bytes.Buffer
	trace := NewTerminalTrace(&buf)
	trace.DrawPath([]models.TrackPoint{{Latitude: 1, Longitude: 1}, {Latitude: 1.001, Longitude: 1}, {Latitude: 1.002, Longitude: 1}})

	if trace.Segments() != 2 {
		t.Errorf("expected 2 segments, got %d", trace.Segments())
	}
	if !strings.Contains(buf.String(), "3 points restored") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTerminalTrace_ReplayCanvas(t *testing.T) {
	var buf bytes.Buffer
	trace := NewTerminalTrace(&buf)
	points := testTrip().Points

	trace.ClearLayers()
	trace.ShowRoute(points)
	trace.MoveMarker(points[0])
	trace.DrawTrace(points[0], points[1], geo.BandIdle.Color())

	out := buf.String()
	if !strings.Contains(out, "2 points from") {
		t.Errorf("expected route line, got %q", out)
	}
	if trace.Segments() != 1 {
		t.Errorf("expected 1 replayed segment, got %d", trace.Segments())
	}

	trace.ShowRoute(nil)
}
