package agents

import "errors"

// Pipeline error surface. Callers branch on these with errors.Is; the
// wrapped cause carries the detail.
var (
	// ErrTripNotFound means the trip ID has no stored spec.
	ErrTripNotFound = errors.New("trip not found")

	// ErrMacroPlanGenerationFailed means every generation attempt produced
	// an unusable day skeleton.
	ErrMacroPlanGenerationFailed = errors.New("macro plan generation failed")

	// ErrPOIPlanRequiresMacroPlan means the POI stage ran before a macro
	// plan existed for the trip.
	ErrPOIPlanRequiresMacroPlan = errors.New("poi planning requires a macro plan")

	// ErrItineraryRequiresPOIPlan means the optimizer ran before a POI
	// plan existed for the trip.
	ErrItineraryRequiresPOIPlan = errors.New("itinerary requires a poi plan")
)
