package agents

import (
	"context"
	"sync"
	"time"

	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/providers/poi"
)

const (
	candidatesPerBlock = 10
	searchConcurrency  = 8
	searchTimeout      = 10 * time.Second
)

// POIPlanner resolves ranked POI candidates for every skeleton block
// that needs them. Provider queries run in parallel; the result is made
// deterministic by a sequential de-duplication pass afterwards.
type POIPlanner struct {
	Provider poi.Provider
}

// NewPOIPlanner creates a POI planner over the given provider.
func NewPOIPlanner(provider poi.Provider) *POIPlanner {
	return &POIPlanner{Provider: provider}
}

// Plan fills candidate lists for the macro plan's meal, activity and
// nightlife blocks. An empty candidate list is not an error; downstream
// handles unfilled blocks.
func (p *POIPlanner) Plan(ctx context.Context, spec *model.TripSpec, plan *model.MacroPlan) (*model.POIPlan, error) {
	type task struct {
		dayNumber  int
		blockIndex int
		block      model.SkeletonBlock
	}

	var tasks []task
	for _, day := range plan.Days {
		for i, b := range day.Blocks {
			if !b.BlockType.NeedsPOI() {
				continue
			}
			tasks = append(tasks, task{dayNumber: day.DayNumber, blockIndex: i, block: b})
		}
	}

	var center *model.LatLng
	if spec.Hotel != nil {
		center = spec.Hotel.Coords
	}

	// Fan out provider queries, one per block, bounded by a semaphore.
	results := make([]model.POIBlockCandidates, len(tasks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, searchConcurrency)
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
			defer cancel()

			candidates, err := p.Provider.Search(searchCtx, poi.Query{
				City:       spec.City,
				Categories: t.block.DesiredCategories,
				Budget:     spec.Budget,
				Limit:      candidatesPerBlock,
				Center:     center,
			})
			if err != nil {
				log.Warnf(ctx, "poi search failed for day %d block %d: %v", t.dayNumber, t.blockIndex, err)
				candidates = nil
			}
			results[i] = model.POIBlockCandidates{
				DayNumber:         t.dayNumber,
				BlockIndex:        t.blockIndex,
				BlockType:         t.block.BlockType,
				DesiredCategories: t.block.DesiredCategories,
				Candidates:        candidates,
			}
		}(i, t)
	}
	wg.Wait()

	dedupeTopCandidates(results)
	return &model.POIPlan{TripID: spec.TripID, Blocks: results}, nil
}

// dedupeTopCandidates walks blocks in day/block order and demotes
// already-claimed top picks to the bottom of later lists, so the same
// venue is not the first choice of two blocks. Tasks are generated in
// order, so a plain left-to-right pass is deterministic.
func dedupeTopCandidates(blocks []model.POIBlockCandidates) {
	used := make(map[string]bool)
	for i := range blocks {
		cs := blocks[i].Candidates
		if len(cs) == 0 {
			continue
		}
		fresh := make([]model.POICandidate, 0, len(cs))
		var demoted []model.POICandidate
		for _, c := range cs {
			if used[c.ID] {
				demoted = append(demoted, c)
			} else {
				fresh = append(fresh, c)
			}
		}
		blocks[i].Candidates = append(fresh, demoted...)
		used[blocks[i].Candidates[0].ID] = true
	}
}
