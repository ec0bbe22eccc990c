// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts trips, points and parcels to GeoJSON FeatureCollections

package geojson

import (
	"encoding/json"

	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// LineCoordinates represents [[lng, lat], [lng, lat], ...] for a LineString.
type LineCoordinates []PointCoordinates

// PolygonCoordinates represents closed rings for a Polygon.
type PolygonCoordinates []LineCoordinates

// NewFeatureCollection returns an empty collection.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

func trackCoords(points []models.TrackPoint) LineCoordinates {
	coords := make(LineCoordinates, len(points))
	for i, p := range points {
		coords[i] = PointCoordinates{p.Longitude, p.Latitude}
	}
	return coords
}

func tripProperties(trip *models.Trip) map[string]interface{} {
	props := map[string]interface{}{
		"id":             trip.ID,
		"date":           trip.Date,
		"duration_ms":    trip.Duration,
		"distance_km":    trip.Distance,
		"elevation_gain": trip.ElevationGain,
		"elevation_loss": trip.ElevationLoss,
		"point_count":    len(trip.Points),
	}
	if trip.Note != "" {
		props["note"] = trip.Note
	}
	return props
}

// TripFeature returns a trip's whole route as one LineString.
// A single-point trip becomes a Point.
func TripFeature(trip *models.Trip) Feature {
	if len(trip.Points) == 1 {
		p := trip.Points[0]
		return Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: PointCoordinates{p.Longitude, p.Latitude}},
			Properties: tripProperties(trip),
		}
	}
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "LineString", Coordinates: trackCoords(trip.Points)},
		Properties: tripProperties(trip),
	}
}

// SegmentFeature returns one speed-colored segment.
func SegmentFeature(from, to models.TrackPoint, color string) Feature {
	kmh := geo.MpsToKmh(to.Speed)
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "LineString",
			Coordinates: LineCoordinates{{from.Longitude, from.Latitude}, {to.Longitude, to.Latitude}},
		},
		Properties: map[string]interface{}{
			"stroke":    color,
			"speed_kmh": kmh,
			"band":      geo.BandFor(kmh).String(),
		},
	}
}

// TripToFeatureCollection converts a trip to a FeatureCollection. With
// segments set, each consecutive pair of points is added as its own colored
// LineString after the full route.
func TripToFeatureCollection(trip *models.Trip, segments bool) *FeatureCollection {
	fc := NewFeatureCollection()
	if trip == nil || len(trip.Points) == 0 {
		return fc
	}
	fc.Features = append(fc.Features, TripFeature(trip))
	if segments {
		for i := 1; i < len(trip.Points); i++ {
			to := trip.Points[i]
			fc.Features = append(fc.Features,
				SegmentFeature(trip.Points[i-1], to, geo.SpeedColor(geo.MpsToKmh(to.Speed))))
		}
	}
	return fc
}

// TripsToFeatureCollection converts trips to one feature each, skipping empty trips.
func TripsToFeatureCollection(trips []*models.Trip) *FeatureCollection {
	fc := NewFeatureCollection()
	for _, trip := range trips {
		if len(trip.Points) == 0 {
			continue
		}
		fc.Features = append(fc.Features, TripFeature(trip))
	}
	return fc
}

// PointsToFeatureCollection converts saved points of interest to Point features.
func PointsToFeatureCollection(points []*models.Point) *FeatureCollection {
	fc := NewFeatureCollection()
	for _, p := range points {
		props := map[string]interface{}{
			"id":    p.ID,
			"emoji": p.Emoji,
			"date":  p.Date,
		}
		if p.Note != "" {
			props["note"] = p.Note
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: PointCoordinates{p.Longitude, p.Latitude}},
			Properties: props,
		})
	}
	return fc
}

// ParcelsToFeatureCollection converts parcels to Polygon features. Boundaries
// are stored as [lat, lng] pairs and closed if needed.
func ParcelsToFeatureCollection(parcels []*models.Parcel) *FeatureCollection {
	fc := NewFeatureCollection()
	for _, parcel := range parcels {
		if len(parcel.Boundary) < 3 {
			continue
		}
		ring := make(LineCoordinates, 0, len(parcel.Boundary)+1)
		for _, v := range parcel.Boundary {
			ring = append(ring, PointCoordinates{v[1], v[0]})
		}
		if ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		props := map[string]interface{}{
			"id":   parcel.ID,
			"name": parcel.Name,
		}
		if parcel.Note != "" {
			props["note"] = parcel.Note
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Polygon", Coordinates: PolygonCoordinates{ring}},
			Properties: props,
		})
	}
	return fc
}

// Merge appends the features of others to fc.
func (fc *FeatureCollection) Merge(others ...*FeatureCollection) *FeatureCollection {
	for _, o := range others {
		if o != nil {
			fc.Features = append(fc.Features, o.Features...)
		}
	}
	return fc
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
