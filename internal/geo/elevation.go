// ABOUTME: Cumulative elevation gain and loss over a recorded path
// ABOUTME: Uses a fixed noise threshold to ignore altimeter jitter

package geo

import (
	"math"

	"github.com/harper/wander/internal/models"
)

// NoiseThresholdM is the minimum altitude change in meters that counts.
const NoiseThresholdM = 2.0

// ElevationResult holds whole-meter totals.
type ElevationResult struct {
	Gain int `json:"gain"`
	Loss int `json:"loss"`
}

// Elevation computes gain and loss along points. The reference altitude starts
// at the first point's altitude and only moves when a change exceeds the
// threshold, so slow drifts below it accumulate until they count. A sample is
// skipped when its altitude or the reference is missing or zero; a path whose
// first point has no altitude therefore yields no gain or loss.
func Elevation(points []models.TrackPoint) ElevationResult {
	validSamples := 0
	for _, p := range points {
		if p.HasAltitude() {
			validSamples++
		}
	}
	if validSamples < 2 {
		return ElevationResult{}
	}

	var gain, loss, last float64
	if points[0].HasAltitude() {
		last = *points[0].Altitude
	}
	for _, p := range points[1:] {
		if !p.HasAltitude() || last == 0 {
			continue
		}
		alt := *p.Altitude
		diff := alt - last
		if math.Abs(diff) > NoiseThresholdM {
			if diff > 0 {
				gain += diff
			} else {
				loss += -diff
			}
			last = alt
		}
	}
	return ElevationResult{Gain: int(math.Round(gain)), Loss: int(math.Round(loss))}
}
