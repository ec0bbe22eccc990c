// ABOUTME: Terminal renderer for live traces and replays
// ABOUTME: Prints one colored line per segment so a recording can be followed in a shell

package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/models"
)

// TerminalTrace writes trace segments to a writer. It serves both as the
// tracking renderer and as a replay canvas.
type TerminalTrace struct {
	mu       sync.Mutex
	out      io.Writer
	segments int
	km       float64
}

// NewTerminalTrace creates a trace printer on out.
func NewTerminalTrace(out io.Writer) *TerminalTrace {
	return &TerminalTrace{out: out}
}

// DrawSegment prints one segment colored by speed.
func (t *TerminalTrace) DrawSegment(from, to models.TrackPoint, hex string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segment(from, to, hex)
}

func (t *TerminalTrace) segment(from, to models.TrackPoint, hex string) {
	step := geo.HaversineKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	t.segments++
	t.km += step
	fmt.Fprintf(t.out, "%s %9.5f, %10.5f  %s  %s\n",
		ColorForHex(hex).Sprint("●"),
		to.Latitude, to.Longitude,
		ColorForHex(hex).Sprintf("%5.1f km/h", geo.MpsToKmh(to.Speed)),
		color.New(color.Faint).Sprint(FormatDistance(t.km)))
}

// DrawPath prints a summary line for a restored path.
func (t *TerminalTrace) DrawPath(points []models.TrackPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 1; i < len(points); i++ {
		t.km += geo.HaversineKm(points[i-1].Latitude, points[i-1].Longitude, points[i].Latitude, points[i].Longitude)
	}
	t.segments += max(len(points)-1, 0)
	fmt.Fprintf(t.out, "%s %d points restored, %s so far\n",
		color.CyanString("↺"), len(points), FormatDistance(t.km))
}

// ClearTrace resets the running totals.
func (t *TerminalTrace) ClearTrace() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments = 0
	t.km = 0
}

// ShowRoute prints the route underlay for a replay.
func (t *TerminalTrace) ShowRoute(points []models.TrackPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(points) == 0 {
		return
	}
	first, last := points[0], points[len(points)-1]
	fmt.Fprintf(t.out, "%s %d points from (%.5f, %.5f) to (%.5f, %.5f)\n",
		color.New(color.Faint).Sprint("route"), len(points),
		first.Latitude, first.Longitude, last.Latitude, last.Longitude)
}

// MoveMarker is a no-op; the latest printed segment is the marker.
func (t *TerminalTrace) MoveMarker(models.TrackPoint) {}

// DrawTrace prints one replayed segment.
func (t *TerminalTrace) DrawTrace(from, to models.TrackPoint, hex string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segment(from, to, hex)
}

// ClearLayers resets the running totals before a replay.
func (t *TerminalTrace) ClearLayers() {
	t.ClearTrace()
}

// Segments returns how many segments have been drawn since the last clear.
func (t *TerminalTrace) Segments() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.segments
}

// DistanceKm returns the distance drawn since the last clear.
func (t *TerminalTrace) DistanceKm() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.km
}
