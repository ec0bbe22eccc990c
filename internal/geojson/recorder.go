// ABOUTME: Renderer that collects drawn trace segments as GeoJSON
// ABOUTME: Lets a live recording or replay be saved as a colored map layer

package geojson

import (
	"sync"

	"github.com/harper/wander/internal/models"
)

// TraceRecorder collects segments drawn by the tracking engine or a replay.
type TraceRecorder struct {
	mu       sync.Mutex
	route    []models.TrackPoint
	segments []Feature
	marker   *models.TrackPoint
}

// NewTraceRecorder creates an empty recorder.
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{}
}

// DrawSegment records one colored segment.
func (r *TraceRecorder) DrawSegment(from, to models.TrackPoint, color string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segments = append(r.segments, SegmentFeature(from, to, color))
}

// DrawPath records a restored path as an uncolored route.
func (r *TraceRecorder) DrawPath(points []models.TrackPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = append([]models.TrackPoint(nil), points...)
}

// ClearTrace drops everything recorded.
func (r *TraceRecorder) ClearTrace() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = nil
	r.segments = nil
	r.marker = nil
}

// ShowRoute records the replay underlay.
func (r *TraceRecorder) ShowRoute(points []models.TrackPoint) {
	r.DrawPath(points)
}

// MoveMarker records the marker position.
func (r *TraceRecorder) MoveMarker(p models.TrackPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marker = &p
}

// DrawTrace records one replayed segment.
func (r *TraceRecorder) DrawTrace(from, to models.TrackPoint, color string) {
	r.DrawSegment(from, to, color)
}

// ClearLayers drops everything recorded.
func (r *TraceRecorder) ClearLayers() {
	r.ClearTrace()
}

// Len returns the number of recorded segments.
func (r *TraceRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.segments)
}

// FeatureCollection returns the route, the segments and the marker as GeoJSON.
func (r *TraceRecorder) FeatureCollection() *FeatureCollection {
	r.mu.Lock()
	defer r.mu.Unlock()

	fc := NewFeatureCollection()
	if len(r.route) > 1 {
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "LineString", Coordinates: trackCoords(r.route)},
			Properties: map[string]interface{}{"layer": "route"},
		})
	}
	fc.Features = append(fc.Features, r.segments...)
	if r.marker != nil {
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: PointCoordinates{r.marker.Longitude, r.marker.Latitude}},
			Properties: map[string]interface{}{"layer": "marker"},
		})
	}
	return fc
}
