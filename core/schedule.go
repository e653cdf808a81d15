// Package core provides wall-clock schedule arithmetic shared by the
// route optimizer and the trip critic.
package core

import (
	"github.com/skanade/tripweaver/model"
)

// Interval is a half-open [Start, End) span in seconds since midnight.
// End may exceed 24h for spans that wrap past midnight.
type Interval struct {
	Start model.ClockTime
	End   model.ClockTime
}

// BlockInterval unwraps a block's times into a linear interval: a
// past-midnight nightlife end is pushed beyond 24h so comparisons stay
// monotonic within the day.
func BlockInterval(start, end model.ClockTime, wraps bool) Interval {
	if wraps {
		end += model.ClockTime(24 * 3600)
	}
	return Interval{Start: start, End: end}
}

// Minutes returns the interval length in whole minutes.
func (iv Interval) Minutes() int {
	return int(iv.End-iv.Start) / 60
}

// Overlaps reports whether two intervals share any time. Touching
// endpoints do not count as overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// OverlapsWindow reports whether the interval intersects a meal window.
func (iv Interval) OverlapsWindow(w model.MealWindow) bool {
	return iv.Overlaps(Interval{Start: w.Start, End: w.End})
}

// Shift moves the interval forward by the given number of minutes,
// preserving its duration.
func (iv Interval) Shift(minutes int) Interval {
	d := model.ClockTime(minutes * 60)
	return Interval{Start: iv.Start + d, End: iv.End + d}
}

// ActiveMinutes sums the durations of non-rest, non-travel blocks of a day.
func ActiveMinutes(blocks []model.ItineraryBlock) int {
	total := 0
	for _, b := range blocks {
		if b.BlockType == model.BlockRest || b.BlockType == model.BlockTravel {
			continue
		}
		total += b.DurationMinutes()
	}
	return total
}

// PaceThresholdMinutes returns the busy-day ceiling for a pace.
func PaceThresholdMinutes(p model.Pace) int {
	switch p {
	case model.PaceSlow:
		return 7 * 60
	case model.PaceFast:
		return 12 * 60
	default:
		return 9 * 60
	}
}
