package model

import "time"

// POICandidate is a ranked point-of-interest candidate for a block.
// Identity is by ID; RankScore orders candidates within a block.
type POICandidate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	PriceTier *Budget  `json:"price_tier,omitempty"`
	Location  string   `json:"location"`
	Coords    *LatLng  `json:"coords,omitempty"`
	RankScore float64  `json:"rank_score"`
}

// POIBlockCandidates holds the ranked candidate list for one skeleton block.
// BlockIndex counts every block of the day, including rest/travel, so it
// aligns with the skeleton.
type POIBlockCandidates struct {
	DayNumber         int            `json:"day_number"`
	BlockIndex        int            `json:"block_index"`
	BlockType         BlockType      `json:"block_type"`
	DesiredCategories []string       `json:"desired_categories"`
	Candidates        []POICandidate `json:"candidates"`
}

// POIPlan is the POI planner's persisted output.
type POIPlan struct {
	TripID string               `json:"trip_id"`
	Blocks []POIBlockCandidates `json:"blocks"`
}

// Find returns the candidate list for a (day, block) pair, or nil.
func (p *POIPlan) Find(dayNumber, blockIndex int) *POIBlockCandidates {
	for i := range p.Blocks {
		if p.Blocks[i].DayNumber == dayNumber && p.Blocks[i].BlockIndex == blockIndex {
			return &p.Blocks[i]
		}
	}
	return nil
}

// ItineraryBlock is a skeleton block with a bound POI and travel data.
type ItineraryBlock struct {
	SkeletonBlock
	POI                  *POICandidate `json:"poi"`
	TravelTimeFromPrev   int           `json:"travel_time_from_prev"`
	TravelDistanceMeters *int          `json:"travel_distance_meters,omitempty"`
	TravelPolyline       *string       `json:"travel_polyline,omitempty"`
	Notes                *string       `json:"notes,omitempty"`
}

// ItineraryDay is one fully scheduled trip day.
type ItineraryDay struct {
	DayNumber int              `json:"day_number"`
	Date      Date             `json:"date"`
	Theme     string           `json:"theme"`
	Blocks    []ItineraryBlock `json:"blocks"`
}

// Itinerary is the optimizer's persisted output and the pipeline result.
type Itinerary struct {
	TripID    string         `json:"trip_id"`
	Days      []ItineraryDay `json:"days"`
	CreatedAt time.Time      `json:"created_at"`
}

// CritiqueIssue is one typed finding about an itinerary.
type CritiqueIssue struct {
	Code       string         `json:"code"`
	Severity   Severity       `json:"severity"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	DayNumber  *int           `json:"day_number,omitempty"`
	BlockIndex *int           `json:"block_index,omitempty"`
}
