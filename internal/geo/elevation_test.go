// ABOUTME: Tests for the elevation gain/loss calculator
// ABOUTME: Covers the noise threshold, missing altitudes and short paths

package geo

import (
	"testing"

	"github.com/harper/wander/internal/models"
	"github.com/stretchr/testify/assert"
)

func path(alts ...*float64) []models.TrackPoint {
	points := make([]models.TrackPoint, len(alts))
	for i, a := range alts {
		points[i] = models.TrackPoint{Latitude: 1, Longitude: 1, Altitude: a}
	}
	return points
}

func f(v float64) *float64 { return &v }

func TestElevation_NoiseThreshold(t *testing.T) {
	got := Elevation(path(f(100), f(100.5), f(105), f(103), f(90)))
	assert.Equal(t, ElevationResult{Gain: 5, Loss: 15}, got)
}

func TestElevation_SkipsMissingAndZero(t *testing.T) {
	got := Elevation(path(f(200), nil, f(0), f(210), nil, f(0), f(205)))
	assert.Equal(t, ElevationResult{Gain: 10, Loss: 5}, got)
}

func TestElevation_MissingFirstAltitudeYieldsNothing(t *testing.T) {
	assert.Equal(t, ElevationResult{}, Elevation(path(nil, f(100), f(110), f(104))))
	assert.Equal(t, ElevationResult{}, Elevation(path(f(0), f(200), f(210), f(205))))
}

func TestElevation_ExactlyThresholdIgnored(t *testing.T) {
	got := Elevation(path(f(100), f(102), f(104)))
	// 102 is within the threshold, 104 is 4 above the reference.
	assert.Equal(t, ElevationResult{Gain: 4}, got)
}

func TestElevation_SlowDriftAccumulates(t *testing.T) {
	got := Elevation(path(f(100), f(101), f(102), f(103)))
	assert.Equal(t, ElevationResult{Gain: 3}, got)
}

func TestElevation_FewerThanTwoValid(t *testing.T) {
	assert.Equal(t, ElevationResult{}, Elevation(nil))
	assert.Equal(t, ElevationResult{}, Elevation(path(f(100))))
	assert.Equal(t, ElevationResult{}, Elevation(path(nil, f(0), f(350))))
}

func TestElevation_Rounding(t *testing.T) {
	got := Elevation(path(f(10), f(12.6), f(9.2)))
	assert.Equal(t, ElevationResult{Gain: 3, Loss: 3}, got)
}
