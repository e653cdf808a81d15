package model

import "fmt"

// SkeletonBlock is one typed time block in a day skeleton, before POIs
// are bound to it.
type SkeletonBlock struct {
	BlockType         BlockType `json:"block_type"`
	StartTime         ClockTime `json:"start_time"`
	EndTime           ClockTime `json:"end_time"`
	Theme             string    `json:"theme"`
	DesiredCategories []string  `json:"desired_categories"`
}

// WrapsMidnight reports whether the block runs past midnight. Only
// nightlife blocks are allowed to.
func (b SkeletonBlock) WrapsMidnight() bool {
	return b.EndTime < b.StartTime
}

// DurationMinutes returns the block length in minutes, accounting for a
// past-midnight wrap.
func (b SkeletonBlock) DurationMinutes() int {
	end := b.EndTime
	if b.WrapsMidnight() {
		end += ClockTime(24 * 3600)
	}
	return int(end-b.StartTime) / 60
}

// Validate checks the block's own invariants.
func (b SkeletonBlock) Validate() error {
	if _, err := ParseBlockType(string(b.BlockType)); err != nil {
		return err
	}
	if b.BlockType.NeedsPOI() && len(b.DesiredCategories) == 0 {
		return fmt.Errorf("%s block must carry desired categories", b.BlockType)
	}
	if b.WrapsMidnight() && b.BlockType != BlockNightlife {
		return fmt.Errorf("%s block may not wrap past midnight", b.BlockType)
	}
	return nil
}

// DaySkeleton is the high-level plan for one trip day.
type DaySkeleton struct {
	DayNumber int             `json:"day_number"`
	Date      Date            `json:"date"`
	Theme     string          `json:"theme"`
	Blocks    []SkeletonBlock `json:"blocks"`
}

// MacroPlan is the macro planner's persisted output.
type MacroPlan struct {
	TripID string        `json:"trip_id"`
	Days   []DaySkeleton `json:"days"`
}

// Validate checks the skeleton against the trip spec: full date coverage,
// contiguous 1-based day numbers, ordered blocks, valid blocks, and a
// meal block starting inside each of the three routine windows.
func (m *MacroPlan) Validate(spec *TripSpec) error {
	if len(m.Days) != spec.Days() {
		return fmt.Errorf("skeleton covers %d days, trip has %d", len(m.Days), spec.Days())
	}
	for i, day := range m.Days {
		if day.DayNumber != i+1 {
			return fmt.Errorf("day %d has day_number %d", i+1, day.DayNumber)
		}
		want := spec.StartDate.AddDays(i)
		if !day.Date.Equal(want.Time) {
			return fmt.Errorf("day %d has date %s, want %s", day.DayNumber, day.Date, want)
		}
		var prev ClockTime = -1
		for j, b := range day.Blocks {
			if err := b.Validate(); err != nil {
				return fmt.Errorf("day %d block %d: %w", day.DayNumber, j, err)
			}
			if b.StartTime < prev {
				return fmt.Errorf("day %d block %d out of order", day.DayNumber, j)
			}
			prev = b.StartTime
		}
		for _, meal := range []struct {
			name   string
			window MealWindow
		}{
			{"breakfast", spec.Routine.Breakfast},
			{"lunch", spec.Routine.Lunch},
			{"dinner", spec.Routine.Dinner},
		} {
			if !hasMealIn(day.Blocks, meal.window) {
				return fmt.Errorf("day %d has no meal block in the %s window", day.DayNumber, meal.name)
			}
		}
	}
	return nil
}

func hasMealIn(blocks []SkeletonBlock, w MealWindow) bool {
	for _, b := range blocks {
		if b.BlockType == BlockMeal && w.Contains(b.StartTime) {
			return true
		}
	}
	return false
}
