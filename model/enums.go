// Package model holds the domain types shared by the planning pipeline
// and their persisted JSON wire shapes.
package model

import "fmt"

// Pace controls how packed each day is allowed to be.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceMedium Pace = "medium"
	PaceFast   Pace = "fast"
)

// ParsePace validates a pace string, rejecting unknown variants.
func ParsePace(s string) (Pace, error) {
	switch Pace(s) {
	case PaceSlow, PaceMedium, PaceFast:
		return Pace(s), nil
	}
	return "", fmt.Errorf("unknown pace %q", s)
}

// Budget is the traveler's spending tier.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// ParseBudget validates a budget string, rejecting unknown variants.
func ParseBudget(s string) (Budget, error) {
	switch Budget(s) {
	case BudgetLow, BudgetMedium, BudgetHigh:
		return Budget(s), nil
	}
	return "", fmt.Errorf("unknown budget %q", s)
}

// BlockType classifies a time block within a day.
type BlockType string

const (
	BlockMeal      BlockType = "meal"
	BlockActivity  BlockType = "activity"
	BlockNightlife BlockType = "nightlife"
	BlockRest      BlockType = "rest"
	BlockTravel    BlockType = "travel"
)

// ParseBlockType validates a block type string, rejecting unknown variants.
func ParseBlockType(s string) (BlockType, error) {
	switch BlockType(s) {
	case BlockMeal, BlockActivity, BlockNightlife, BlockRest, BlockTravel:
		return BlockType(s), nil
	}
	return "", fmt.Errorf("unknown block type %q", s)
}

// NeedsPOI reports whether a block of this type must carry POI candidates.
func (b BlockType) NeedsPOI() bool {
	switch b {
	case BlockMeal, BlockActivity, BlockNightlife:
		return true
	}
	return false
}

// TravelMode selects the transport profile for a travel-time estimate.
type TravelMode string

const (
	ModeDrive   TravelMode = "DRIVE"
	ModeWalk    TravelMode = "WALK"
	ModeTransit TravelMode = "TRANSIT"
)

// Severity grades a critique issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Critique issue codes. The set is closed; the critic emits nothing else.
const (
	IssueDayTooBusy         = "DAY_TOO_BUSY"
	IssueMissingBreakfast   = "MISSING_BREAKFAST"
	IssueMissingLunch       = "MISSING_LUNCH"
	IssueMissingDinner      = "MISSING_DINNER"
	IssueInvalidTimeRange   = "INVALID_TIME_RANGE"
	IssueBlockOverlap       = "BLOCK_OVERLAP"
	IssueLongTravel         = "LONG_TRAVEL"
	IssueLateNightlife      = "LATE_NIGHTLIFE"
	IssueConsecutiveIntense = "CONSECUTIVE_INTENSE_DAYS"
)

// IssueCodes lists every code the critic may emit.
func IssueCodes() []string {
	return []string{
		IssueDayTooBusy,
		IssueMissingBreakfast,
		IssueMissingLunch,
		IssueMissingDinner,
		IssueInvalidTimeRange,
		IssueBlockOverlap,
		IssueLongTravel,
		IssueLateNightlife,
		IssueConsecutiveIntense,
	}
}
