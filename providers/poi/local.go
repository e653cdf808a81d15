package poi

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
)

// Rank score weights. Rating dominates, primary-category matches beat
// tag matches, and a price tier off the trip budget costs a little.
const (
	defaultRating        = 3.5
	ratingWeight         = 2.0
	categoryWeight       = 3.0
	budgetMismatchWeight = 0.5

	primaryMatchScore   = 1.0
	secondaryMatchScore = 0.6
	tagMatchScore       = 0.3
)

// LocalProvider searches the indexed POI store.
type LocalProvider struct {
	db *gorm.DB
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider wraps a gorm handle over the POI store.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// Search implements Provider. Store errors surface to the caller.
func (p *LocalProvider) Search(_ context.Context, q Query) ([]model.POICandidate, error) {
	rows, err := orm.SearchPOIs(p.db, q.City, q.Categories)
	if err != nil {
		return nil, err
	}

	out := make([]model.POICandidate, 0, len(rows))
	for i := range rows {
		c := rows[i].ToCandidate()
		c.RankScore = rankScore(&rows[i], q)
		out = append(out, c)
	}
	sortByRank(out)
	return truncate(out, q.Limit), nil
}

func rankScore(p *orm.POI, q Query) float64 {
	rating := defaultRating
	if p.Rating != nil {
		rating = *p.Rating
	}

	match := 0.0
	category := strings.ToLower(p.Category)
	for i, want := range q.Categories {
		if category == strings.ToLower(want) {
			if i == 0 {
				match = primaryMatchScore
			} else if match < secondaryMatchScore {
				match = secondaryMatchScore
			}
			break
		}
	}
	if match == 0 {
		for _, tag := range p.TagList() {
			for _, want := range q.Categories {
				if strings.EqualFold(tag, want) {
					match = tagMatchScore
				}
			}
		}
	}

	mismatch := 0.0
	if p.PriceTier != nil && q.Budget != "" {
		mismatch = float64(budgetDistance(model.Budget(*p.PriceTier), q.Budget))
	}

	return ratingWeight*rating + categoryWeight*match - budgetMismatchWeight*mismatch
}

func budgetDistance(a, b model.Budget) int {
	idx := func(t model.Budget) int {
		switch t {
		case model.BudgetLow:
			return 0
		case model.BudgetMedium:
			return 1
		default:
			return 2
		}
	}
	d := idx(a) - idx(b)
	if d < 0 {
		d = -d
	}
	return d
}
