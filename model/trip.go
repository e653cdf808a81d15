package model

import "fmt"

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HotelLocation is the traveler's base: free text plus optional coordinates.
type HotelLocation struct {
	Address string  `json:"address"`
	Coords  *LatLng `json:"coords,omitempty"`
}

// MealWindow is the routine interval in which a meal should happen.
type MealWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Contains reports whether t falls inside the window (inclusive bounds).
func (w MealWindow) Contains(t ClockTime) bool {
	return t >= w.Start && t <= w.End
}

// DailyRoutine describes the traveler's daily rhythm.
type DailyRoutine struct {
	WakeTime  ClockTime  `json:"wake_time"`
	SleepTime ClockTime  `json:"sleep_time"`
	Breakfast MealWindow `json:"breakfast"`
	Lunch     MealWindow `json:"lunch"`
	Dinner    MealWindow `json:"dinner"`
}

// DefaultRoutine is used when the trip spec omits a routine.
func DefaultRoutine() DailyRoutine {
	return DailyRoutine{
		WakeTime:  NewClockTime(8, 0, 0),
		SleepTime: NewClockTime(23, 0, 0),
		Breakfast: MealWindow{Start: NewClockTime(8, 0, 0), End: NewClockTime(10, 0, 0)},
		Lunch:     MealWindow{Start: NewClockTime(12, 0, 0), End: NewClockTime(14, 30, 0)},
		Dinner:    MealWindow{Start: NewClockTime(19, 0, 0), End: NewClockTime(21, 30, 0)},
	}
}

// WindowFor returns the routine window for a named meal, or false for
// anything that is not breakfast/lunch/dinner.
func (r DailyRoutine) WindowFor(meal string) (MealWindow, bool) {
	switch meal {
	case "breakfast":
		return r.Breakfast, true
	case "lunch":
		return r.Lunch, true
	case "dinner":
		return r.Dinner, true
	}
	return MealWindow{}, false
}

// TripSpec is the pipeline input. It is owned by the trip-management
// collaborator; the pipeline never mutates it.
type TripSpec struct {
	TripID      string         `json:"trip_id"`
	City        string         `json:"city"`
	CountryCode string         `json:"country_code,omitempty"`
	StartDate   Date           `json:"start_date"`
	EndDate     Date           `json:"end_date"`
	Travelers   int            `json:"travelers"`
	Pace        Pace           `json:"pace"`
	Budget      Budget         `json:"budget"`
	Interests   []string       `json:"interests"`
	Hotel       *HotelLocation `json:"hotel,omitempty"`
	Preferences string         `json:"preferences,omitempty"`
	Routine     DailyRoutine   `json:"routine"`
}

// Days returns the inclusive day count of the trip.
func (t *TripSpec) Days() int {
	return t.StartDate.DaysUntil(t.EndDate) + 1
}

// Validate checks the structural invariants of the spec.
func (t *TripSpec) Validate() error {
	if t.City == "" {
		return fmt.Errorf("city is required")
	}
	if t.EndDate.Before(t.StartDate.Time) {
		return fmt.Errorf("end_date %s before start_date %s", t.EndDate, t.StartDate)
	}
	if t.Travelers < 1 {
		return fmt.Errorf("travelers must be >= 1, got %d", t.Travelers)
	}
	if _, err := ParsePace(string(t.Pace)); err != nil {
		return err
	}
	if _, err := ParseBudget(string(t.Budget)); err != nil {
		return err
	}
	r := t.Routine
	for _, w := range []MealWindow{r.Breakfast, r.Lunch, r.Dinner} {
		if w.Start < r.WakeTime || w.End > r.SleepTime {
			return fmt.Errorf("meal window %s-%s outside wake/sleep %s-%s",
				w.Start, w.End, r.WakeTime, r.SleepTime)
		}
	}
	if r.Breakfast.End > r.Lunch.Start || r.Lunch.End > r.Dinner.Start {
		return fmt.Errorf("meal windows must be ordered and non-overlapping")
	}
	return nil
}
