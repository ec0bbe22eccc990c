// ABOUTME: Great-circle distance, speed derivation and speed-band colors
// ABOUTME: Haversine approximation on a spherical Earth

package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// HaversineM returns the great-circle distance in meters.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineKm(lat1, lng1, lat2, lng2) * 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// DeriveSpeed returns the speed to record for a new sample in m/s.
// A reported speed that is present and non-zero wins. Otherwise the speed is
// derived from distance over elapsed time, when a previous sample exists and
// time has advanced. Everything else yields the raw value, with nil as 0.
func DeriveSpeed(reported *float64, hasPrev bool, distanceM, elapsedSec float64) float64 {
	if reported != nil && *reported != 0 {
		return *reported
	}
	if hasPrev && elapsedSec > 0 {
		return distanceM / elapsedSec
	}
	return 0
}

// MpsToKmh converts meters per second to kilometers per hour.
func MpsToKmh(mps float64) float64 {
	return mps * 3.6
}

// SpeedBand names a speed range used to color trace segments.
type SpeedBand int

const (
	BandIdle SpeedBand = iota
	BandSlowWalk
	BandBriskWalk
	BandRun
	BandCycle
	BandFast
)

var bandNames = [...]string{"idle", "slow walk", "brisk walk", "run", "cycle", "fast"}

var bandColors = [...]string{"#9e9e9e", "#4caf50", "#8bc34a", "#ffc107", "#ff9800", "#f44336"}

// String returns the band's human readable name.
func (b SpeedBand) String() string {
	if b < 0 || int(b) >= len(bandNames) {
		return "unknown"
	}
	return bandNames[b]
}

// Color returns the band's hex color.
func (b SpeedBand) Color() string {
	if b < 0 || int(b) >= len(bandColors) {
		return bandColors[0]
	}
	return bandColors[b]
}

// BandFor classifies a speed in km/h. Boundaries are upper-exclusive.
func BandFor(kmh float64) SpeedBand {
	switch {
	case kmh < 1:
		return BandIdle
	case kmh < 4:
		return BandSlowWalk
	case kmh < 7:
		return BandBriskWalk
	case kmh < 15:
		return BandRun
	case kmh < 30:
		return BandCycle
	default:
		return BandFast
	}
}

// SpeedColor returns the segment color for a speed in km/h.
func SpeedColor(kmh float64) string {
	return BandFor(kmh).Color()
}
