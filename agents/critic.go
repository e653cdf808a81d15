package agents

import (
	"fmt"
	"sort"

	"github.com/skanade/tripweaver/core"
	"github.com/skanade/tripweaver/model"
)

const (
	longTravelMinutes  = 45
	maxMealMinutes     = 6 * 60
	lateNightSlackSecs = 3 * 3600
)

// Critic grades an itinerary against a closed rule set. It is fully
// deterministic, makes no external calls, and never fails: a clean
// itinerary simply yields no issues.
type Critic struct{}

// NewCritic creates a critic.
func NewCritic() *Critic {
	return &Critic{}
}

// Critique evaluates the itinerary. The result is stably ordered by
// day, block, then code, so repeated runs are byte-identical.
func (c *Critic) Critique(spec *model.TripSpec, it *model.Itinerary) []model.CritiqueIssue {
	var issues []model.CritiqueIssue

	busy := make(map[int]bool)
	for _, day := range it.Days {
		issues = append(issues, c.critiqueDay(spec, day, busy)...)
	}

	for _, day := range it.Days {
		if day.DayNumber > 1 && busy[day.DayNumber] && busy[day.DayNumber-1] {
			n := day.DayNumber
			issues = append(issues, model.CritiqueIssue{
				Code:      model.IssueConsecutiveIntense,
				Severity:  model.SeverityWarning,
				Message:   fmt.Sprintf("days %d and %d are both packed; plan a lighter day between them", n-1, n),
				DayNumber: &n,
				Details:   map[string]any{"previous_day": n - 1},
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		di, dj := issueDay(issues[i]), issueDay(issues[j])
		if di != dj {
			return di < dj
		}
		bi, bj := issueBlock(issues[i]), issueBlock(issues[j])
		if bi != bj {
			return bi < bj
		}
		return issues[i].Code < issues[j].Code
	})
	return issues
}

func (c *Critic) critiqueDay(spec *model.TripSpec, day model.ItineraryDay, busy map[int]bool) []model.CritiqueIssue {
	var issues []model.CritiqueIssue
	n := day.DayNumber

	active := core.ActiveMinutes(day.Blocks)
	threshold := core.PaceThresholdMinutes(spec.Pace)
	if active > threshold {
		busy[n] = true
		issues = append(issues, model.CritiqueIssue{
			Code:      model.IssueDayTooBusy,
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("day %d schedules %d active minutes against a %s-pace ceiling of %d", n, active, spec.Pace, threshold),
			DayNumber: &n,
			Details:   map[string]any{"active_minutes": active, "threshold_minutes": threshold},
		})
	}

	issues = append(issues, c.mealCoverage(spec, day)...)

	intervals := make([]core.Interval, len(day.Blocks))
	for i, b := range day.Blocks {
		intervals[i] = core.BlockInterval(b.StartTime, b.EndTime, b.WrapsMidnight())
		idx := i

		if badTimeRange(b) {
			issues = append(issues, model.CritiqueIssue{
				Code:       model.IssueInvalidTimeRange,
				Severity:   model.SeverityError,
				Message:    fmt.Sprintf("day %d block %d has invalid time range %s-%s", n, i, b.StartTime, b.EndTime),
				DayNumber:  &n,
				BlockIndex: &idx,
			})
		}

		if b.TravelTimeFromPrev > longTravelMinutes {
			issues = append(issues, model.CritiqueIssue{
				Code:       model.IssueLongTravel,
				Severity:   model.SeverityWarning,
				Message:    fmt.Sprintf("day %d block %d needs %d minutes of travel", n, i, b.TravelTimeFromPrev),
				DayNumber:  &n,
				BlockIndex: &idx,
				Details:    map[string]any{"travel_minutes": b.TravelTimeFromPrev},
			})
		}

		if b.BlockType == model.BlockNightlife {
			limit := spec.Routine.SleepTime + model.ClockTime(lateNightSlackSecs)
			if intervals[i].End > limit {
				issues = append(issues, model.CritiqueIssue{
					Code:       model.IssueLateNightlife,
					Severity:   model.SeverityInfo,
					Message:    fmt.Sprintf("day %d nightlife runs until %s, long past sleep time %s", n, b.EndTime, spec.Routine.SleepTime),
					DayNumber:  &n,
					BlockIndex: &idx,
				})
			}
		}
	}

	for i := range day.Blocks {
		for j := i + 1; j < len(day.Blocks); j++ {
			if intervals[i].Overlaps(intervals[j]) {
				idx := i
				issues = append(issues, model.CritiqueIssue{
					Code:       model.IssueBlockOverlap,
					Severity:   model.SeverityError,
					Message:    fmt.Sprintf("day %d blocks %d and %d overlap", n, i, j),
					DayNumber:  &n,
					BlockIndex: &idx,
					Details:    map[string]any{"other_block": j},
				})
			}
		}
	}
	return issues
}

// mealCoverage flags routine meal windows no meal block touches.
func (c *Critic) mealCoverage(spec *model.TripSpec, day model.ItineraryDay) []model.CritiqueIssue {
	n := day.DayNumber
	checks := []struct {
		code     string
		severity model.Severity
		meal     string
		window   model.MealWindow
	}{
		{model.IssueMissingBreakfast, model.SeverityInfo, "breakfast", spec.Routine.Breakfast},
		{model.IssueMissingLunch, model.SeverityWarning, "lunch", spec.Routine.Lunch},
		{model.IssueMissingDinner, model.SeverityWarning, "dinner", spec.Routine.Dinner},
	}

	var issues []model.CritiqueIssue
	for _, check := range checks {
		covered := false
		for _, b := range day.Blocks {
			if b.BlockType != model.BlockMeal {
				continue
			}
			iv := core.BlockInterval(b.StartTime, b.EndTime, b.WrapsMidnight())
			if iv.OverlapsWindow(check.window) {
				covered = true
				break
			}
		}
		if !covered {
			issues = append(issues, model.CritiqueIssue{
				Code:      check.code,
				Severity:  check.severity,
				Message:   fmt.Sprintf("day %d has no meal block in the %s window", n, check.meal),
				DayNumber: &n,
			})
		}
	}
	return issues
}

func badTimeRange(b model.ItineraryBlock) bool {
	if b.BlockType != model.BlockNightlife && b.EndTime <= b.StartTime {
		return true
	}
	return b.BlockType == model.BlockMeal && b.DurationMinutes() > maxMealMinutes
}

func issueDay(i model.CritiqueIssue) int {
	if i.DayNumber == nil {
		return 0
	}
	return *i.DayNumber
}

func issueBlock(i model.CritiqueIssue) int {
	if i.BlockIndex == nil {
		return -1
	}
	return *i.BlockIndex
}
