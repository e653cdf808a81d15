package travel

import (
	"context"
	"math"

	"github.com/skanade/tripweaver/model"
)

const (
	earthRadiusKm = 6371.0
	// Road networks are never straight lines; empirical urban factor.
	roadFactor = 1.3

	minDurationMinutes     = 5
	defaultDurationMinutes = 15
)

// mode speeds in km/h, urban averages.
var modeSpeedKmh = map[model.TravelMode]float64{
	model.ModeDrive:   30,
	model.ModeWalk:    5,
	model.ModeTransit: 20,
}

// HeuristicEstimator computes travel times from great-circle distance.
// It never fails.
type HeuristicEstimator struct{}

var _ Estimator = (*HeuristicEstimator)(nil)

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b model.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * 1000 * math.Asin(math.Sqrt(h))
}

// Estimate implements Estimator. Missing coordinates yield a constant
// default. Walking is always strictly slower than driving for the same
// pair, even when both would clamp to the minimum.
func (h *HeuristicEstimator) Estimate(_ context.Context, origin, dest *model.LatLng, mode model.TravelMode) (Estimate, error) {
	if origin == nil || dest == nil {
		return Estimate{DurationMinutes: defaultDurationMinutes}, nil
	}

	distMeters := Haversine(*origin, *dest) * roadFactor
	minutes := clampedMinutes(distMeters, mode)
	if mode == model.ModeWalk {
		if drive := clampedMinutes(distMeters, model.ModeDrive); minutes <= drive {
			minutes = drive + 1
		}
	}

	dist := int(math.Round(distMeters))
	return Estimate{DurationMinutes: minutes, DistanceMeters: &dist}, nil
}

func clampedMinutes(distMeters float64, mode model.TravelMode) int {
	speed, ok := modeSpeedKmh[mode]
	if !ok {
		speed = modeSpeedKmh[model.ModeDrive]
	}
	minutes := int(math.Ceil(distMeters / 1000 / speed * 60))
	if minutes < minDurationMinutes {
		minutes = minDurationMinutes
	}
	return minutes
}
