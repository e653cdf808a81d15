// Package poi supplies ranked point-of-interest candidates from a local
// store and an external places service, merged by a composite provider.
package poi

import (
	"context"
	"sort"

	"github.com/skanade/tripweaver/model"
)

// Query describes one candidate search.
type Query struct {
	City       string
	Categories []string // ordered; the first is primary
	Budget     model.Budget
	Limit      int
	Center     *model.LatLng // optional bias point, usually the hotel
}

// Provider answers candidate searches. Results are ordered by RankScore
// descending and capped at Query.Limit.
type Provider interface {
	Search(ctx context.Context, q Query) ([]model.POICandidate, error)
}

// sortByRank orders candidates by rank score descending, breaking ties
// by ID so results are deterministic.
func sortByRank(cs []model.POICandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].RankScore != cs[j].RankScore {
			return cs[i].RankScore > cs[j].RankScore
		}
		return cs[i].ID < cs[j].ID
	})
}

func truncate(cs []model.POICandidate, limit int) []model.POICandidate {
	if limit > 0 && len(cs) > limit {
		return cs[:limit]
	}
	return cs
}
