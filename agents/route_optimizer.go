package agents

import (
	"context"
	"time"

	"github.com/skanade/tripweaver/core"
	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/providers/travel"
)

// Blocks are never shifted past sleep time plus this slack; overruns
// already planned beyond it only get a log hint.
const overrunSlackMinutes = 3 * 60

// RouteOptimizer binds one POI to each candidate block and turns the
// skeleton into a timed itinerary: travel legs between consecutive
// stops, with blocks shifted forward when travel would make them start
// before the previous block ends.
type RouteOptimizer struct {
	Estimator travel.Estimator
}

// NewRouteOptimizer creates an optimizer over the given estimator.
func NewRouteOptimizer(est travel.Estimator) *RouteOptimizer {
	return &RouteOptimizer{Estimator: est}
}

// Optimize assembles the itinerary from the macro plan and POI plan.
func (o *RouteOptimizer) Optimize(ctx context.Context, spec *model.TripSpec, macro *model.MacroPlan, pois *model.POIPlan) (*model.Itinerary, error) {
	used := make(map[string]bool)

	var hotelCoords *model.LatLng
	if spec.Hotel != nil {
		hotelCoords = spec.Hotel.Coords
	}

	it := &model.Itinerary{TripID: spec.TripID, CreatedAt: time.Now().UTC()}
	for _, day := range macro.Days {
		itDay := model.ItineraryDay{
			DayNumber: day.DayNumber,
			Date:      day.Date,
			Theme:     day.Theme,
		}

		// Each day starts fresh from the hotel.
		prevLoc := hotelCoords
		prevEnd := model.ClockTime(-1)

		for i, block := range day.Blocks {
			ib := model.ItineraryBlock{SkeletonBlock: block}

			if !block.BlockType.NeedsPOI() {
				theme := block.Theme
				ib.Notes = &theme
				itDay.Blocks = append(itDay.Blocks, ib)
				// Rest and travel happen wherever the traveler already is.
				if iv := core.BlockInterval(block.StartTime, block.EndTime, block.WrapsMidnight()); iv.End > prevEnd {
					prevEnd = iv.End
				}
				continue
			}

			ib.POI = pickCandidate(pois.Find(day.DayNumber, i), used)

			if i > 0 && ib.POI != nil {
				est, err := o.Estimator.Estimate(ctx, prevLoc, ib.POI.Coords, model.ModeDrive)
				if err != nil {
					log.Warnf(ctx, "travel estimate failed for day %d block %d: %v", day.DayNumber, i, err)
					est = travel.Estimate{DurationMinutes: 15}
				}
				ib.TravelTimeFromPrev = est.DurationMinutes
				ib.TravelDistanceMeters = est.DistanceMeters
				ib.TravelPolyline = est.Polyline
			}

			iv := core.BlockInterval(ib.StartTime, ib.EndTime, ib.WrapsMidnight())
			earliest := prevEnd + model.ClockTime(ib.TravelTimeFromPrev*60)
			sleepLimit := spec.Routine.SleepTime + model.ClockTime(overrunSlackMinutes*60)
			midnight := model.ClockTime(24 * 3600)
			if iv.Start < earliest {
				shift := (int(earliest-iv.Start) + 59) / 60
				shifted := iv.Shift(shift)
				// A shift may not push the block past the sleep allowance,
				// and only nightlife may cross midnight. When either would
				// happen the planned times stay and the critic reports the
				// resulting overlap.
				if shifted.End > sleepLimit || (ib.BlockType != model.BlockNightlife && shifted.End > midnight) {
					log.Warnf(ctx, "day %d block %d needs a %d-minute shift past sleep time %s; keeping planned times",
						day.DayNumber, i, shift, spec.Routine.SleepTime)
				} else {
					iv = shifted
					ib.StartTime = iv.Start % midnight
					ib.EndTime = iv.End % midnight
				}
			}

			if ib.BlockType != model.BlockNightlife && iv.End > sleepLimit {
				log.Warnf(ctx, "day %d block %d ends at %s, well past sleep time %s",
					day.DayNumber, i, ib.EndTime, spec.Routine.SleepTime)
			}

			prevEnd = iv.End
			if ib.POI != nil && ib.POI.Coords != nil {
				prevLoc = ib.POI.Coords
			}
			itDay.Blocks = append(itDay.Blocks, ib)
		}
		it.Days = append(it.Days, itDay)
	}
	return it, nil
}

// pickCandidate takes the highest-ranked candidate not yet placed
// elsewhere in the itinerary. When every candidate is taken it reuses
// the top one; an empty list yields no POI for the block.
func pickCandidate(bc *model.POIBlockCandidates, used map[string]bool) *model.POICandidate {
	if bc == nil || len(bc.Candidates) == 0 {
		return nil
	}
	for i := range bc.Candidates {
		if !used[bc.Candidates[i].ID] {
			c := bc.Candidates[i]
			used[c.ID] = true
			return &c
		}
	}
	c := bc.Candidates[0]
	return &c
}
