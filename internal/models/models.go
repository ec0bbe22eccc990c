// ABOUTME: Core data models for track points, trips, points, parcels and recovery snapshots
// ABOUTME: Provides constructors and validators shared by storage, tracking and replay

package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrEmptyPath is returned when a trip would be built from zero track points.
var ErrEmptyPath = errors.New("trip has no track points")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateName checks if a name is valid (non-empty, within length limits).
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty or whitespace")
	}
	if len(name) > 255 {
		return fmt.Errorf("name too long (max 255 characters)")
	}
	return nil
}

// TrackPoint is a single sample of a recorded trajectory.
// Altitude is nil when the positioning source did not report one.
// Speed is in meters per second.
type TrackPoint struct {
	Latitude  float64  `json:"lat" yaml:"lat"`
	Longitude float64  `json:"lng" yaml:"lng"`
	Altitude  *float64 `json:"alt" yaml:"alt"`
	Speed     float64  `json:"speed" yaml:"speed"`
}

// HasAltitude reports whether the point carries a usable altitude.
// Zero is treated as "unknown", matching how most receivers report a missing fix.
func (p TrackPoint) HasAltitude() bool {
	return p.Altitude != nil && *p.Altitude != 0
}

// Trip is a completed, persisted recording.
type Trip struct {
	ID            int64        `json:"id" yaml:"id"`
	Date          string       `json:"date" yaml:"date"`
	Duration      int64        `json:"duration" yaml:"duration"`
	Distance      float64      `json:"distance" yaml:"distance"`
	Points        []TrackPoint `json:"points" yaml:"points"`
	ElevationGain int          `json:"elevationGain" yaml:"elevation_gain"`
	ElevationLoss int          `json:"elevationLoss,omitempty" yaml:"elevation_loss,omitempty"`
	Note          string       `json:"note,omitempty" yaml:"note,omitempty"`
}

// NewTrip builds a trip finalized at end. The trip ID is end in Unix milliseconds;
// storage moves it forward when that millisecond is already taken.
func NewTrip(points []TrackPoint, start, end time.Time, distanceKm float64, gain, loss int) (*Trip, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPath
	}
	path := make([]TrackPoint, len(points))
	copy(path, points)
	return &Trip{
		ID:            end.UnixMilli(),
		Date:          end.UTC().Format(time.RFC3339Nano),
		Duration:      end.Sub(start).Milliseconds(),
		Distance:      distanceKm,
		Points:        path,
		ElevationGain: gain,
		ElevationLoss: loss,
	}, nil
}

// RecordID returns the trip's storage key.
func (t *Trip) RecordID() int64 { return t.ID }

// SetRecordID moves the trip to a new storage key.
func (t *Trip) SetRecordID(id int64) { t.ID = id }

// Time parses the trip date, falling back to the ID timestamp.
func (t *Trip) Time() time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, t.Date); err == nil {
		return ts
	}
	return time.UnixMilli(t.ID)
}

// Validate checks trip invariants.
func (t *Trip) Validate() error {
	if len(t.Points) == 0 {
		return ErrEmptyPath
	}
	if t.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if t.Distance < 0 {
		return fmt.Errorf("distance cannot be negative")
	}
	for i, p := range t.Points {
		if err := ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}

// RecoverySnapshot is the durable copy of an in-progress recording.
type RecoverySnapshot struct {
	SessionID string       `json:"sessionId,omitempty"`
	Path      []TrackPoint `json:"path"`
	StartTime time.Time    `json:"startTime"`
	Distance  float64      `json:"distance"`
}

// Point is an emoji-tagged point of interest.
type Point struct {
	ID        int64   `json:"id" yaml:"id"`
	Latitude  float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Longitude float64 `json:"lng" yaml:"lng" validate:"longitude"`
	Emoji     string  `json:"emoji" yaml:"emoji" validate:"required,max=32"`
	Note      string  `json:"note,omitempty" yaml:"note,omitempty" validate:"max=1024"`
	Date      string  `json:"date" yaml:"date"`
}

// NewPoint creates a point stamped with the current time.
func NewPoint(lat, lng float64, emoji, note string) *Point {
	now := time.Now()
	return &Point{
		ID:        now.UnixMilli(),
		Latitude:  lat,
		Longitude: lng,
		Emoji:     emoji,
		Note:      note,
		Date:      now.UTC().Format(time.RFC3339Nano),
	}
}

// RecordID returns the point's storage key.
func (p *Point) RecordID() int64 { return p.ID }

// SetRecordID moves the point to a new storage key.
func (p *Point) SetRecordID(id int64) { p.ID = id }

// Validate checks point fields.
func (p *Point) Validate() error {
	if err := ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
		return err
	}
	return validate.Struct(p)
}

// Parcel is a named area drawn by the user.
type Parcel struct {
	ID       int64        `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name" validate:"required,max=255"`
	Boundary [][2]float64 `json:"boundary" yaml:"boundary" validate:"min=3"`
	Note     string       `json:"note,omitempty" yaml:"note,omitempty"`
	Date     string       `json:"date" yaml:"date"`
}

// NewParcel creates a parcel stamped with the current time.
// Boundary vertices are [lat, lng] pairs.
func NewParcel(name string, boundary [][2]float64) *Parcel {
	now := time.Now()
	return &Parcel{
		ID:       now.UnixMilli(),
		Name:     name,
		Boundary: boundary,
		Date:     now.UTC().Format(time.RFC3339Nano),
	}
}

// RecordID returns the parcel's storage key.
func (p *Parcel) RecordID() int64 { return p.ID }

// SetRecordID moves the parcel to a new storage key.
func (p *Parcel) SetRecordID(id int64) { p.ID = id }

// Validate checks parcel fields.
func (p *Parcel) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	for i, v := range p.Boundary {
		if err := ValidateCoordinates(v[0], v[1]); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return validate.Struct(p)
}

// NewSessionID returns a fresh identifier for a tracking session.
func NewSessionID() string {
	return uuid.NewString()
}

// Float returns a pointer to v. Used for optional altitudes.
func Float(v float64) *float64 {
	return &v
}
