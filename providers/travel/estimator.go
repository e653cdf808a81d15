// Package travel estimates travel time between two points, either via
// the Routes API or a great-circle heuristic fallback.
package travel

import (
	"context"

	"github.com/skanade/tripweaver/model"
)

// Estimate is the result of a travel-time query.
type Estimate struct {
	DurationMinutes int     `json:"duration_minutes"`
	DistanceMeters  *int    `json:"distance_meters,omitempty"`
	Polyline        *string `json:"polyline,omitempty"`
}

// Estimator answers travel-time queries between two coordinates.
// Either coordinate may be nil (unknown location); implementations
// degrade to a constant default in that case.
type Estimator interface {
	Estimate(ctx context.Context, origin, dest *model.LatLng, mode model.TravelMode) (Estimate, error)
}
