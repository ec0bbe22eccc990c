// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for trips, durations, distances and times

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/models"
)

// FormatDuration renders milliseconds as "1h 01m" from an hour up, MM:SS below.
// Negative durations render as "00:00".
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatDistance renders kilometres, switching to metres below one km.
func FormatDistance(km float64) string {
	if km < 0 {
		km = 0
	}
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.2f km", km)
}

// FormatTrip formats a trip as a single list line.
func FormatTrip(trip *models.Trip) string {
	if trip == nil {
		return color.New(color.Faint).Sprint("(invalid trip)")
	}
	line := fmt.Sprintf("%s  %s  %s  %s",
		color.New(color.Faint).Sprint(trip.ID),
		color.CyanString(trip.Time().Local().Format("Jan 2 2006, 3:04 PM")),
		color.GreenString(FormatDistance(trip.Distance)),
		FormatDuration(trip.Duration))
	if trip.ElevationGain > 0 {
		line += color.New(color.Faint).Sprintf("  ↑%dm", trip.ElevationGain)
	}
	if trip.Note != "" {
		line += " " + color.YellowString("%q", trip.Note)
	}
	return line
}

// FormatTripDetail formats every field of a trip, one per line.
func FormatTripDetail(trip *models.Trip) string {
	if trip == nil {
		return color.New(color.Faint).Sprint("(invalid trip)")
	}
	var b strings.Builder
	label := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(&b, "%s %d\n", label("Trip:    "), trip.ID)
	fmt.Fprintf(&b, "%s %s (%s)\n", label("Date:    "),
		trip.Time().Local().Format("Mon Jan 2 2006, 3:04 PM"),
		FormatRelativeTime(trip.Time()))
	fmt.Fprintf(&b, "%s %s\n", label("Duration:"), FormatDuration(trip.Duration))
	fmt.Fprintf(&b, "%s %s\n", label("Distance:"), color.GreenString(FormatDistance(trip.Distance)))
	fmt.Fprintf(&b, "%s ↑%dm ↓%dm\n", label("Climb:   "), trip.ElevationGain, trip.ElevationLoss)
	fmt.Fprintf(&b, "%s %d\n", label("Points:  "), len(trip.Points))
	if trip.Duration > 0 {
		hours := float64(trip.Duration) / float64(time.Hour/time.Millisecond)
		avg := trip.Distance / hours
		fmt.Fprintf(&b, "%s %s\n", label("Avg:     "), BandColor(geo.BandFor(avg)).Sprintf("%.1f km/h", avg))
	}
	if trip.Note != "" {
		fmt.Fprintf(&b, "%s %s\n", label("Note:    "), color.YellowString(trip.Note))
	}
	return b.String()
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

var bandAttrs = map[geo.SpeedBand]color.Attribute{
	geo.BandIdle:      color.FgHiBlack,
	geo.BandSlowWalk:  color.FgGreen,
	geo.BandBriskWalk: color.FgHiGreen,
	geo.BandRun:       color.FgYellow,
	geo.BandCycle:     color.FgHiYellow,
	geo.BandFast:      color.FgRed,
}

// BandColor returns the terminal color for a speed band.
func BandColor(b geo.SpeedBand) *color.Color {
	attr, ok := bandAttrs[b]
	if !ok {
		attr = color.FgWhite
	}
	return color.New(attr)
}

// ColorForHex maps a segment hex color back to its terminal color.
func ColorForHex(hex string) *color.Color {
	for b := geo.BandIdle; b <= geo.BandFast; b++ {
		if b.Color() == hex {
			return BandColor(b)
		}
	}
	return color.New(color.FgWhite)
}
