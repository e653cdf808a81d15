package poi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
)

func setupLocalDB(t *testing.T, pois ...orm.POI) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orm.POI{}))
	for i := range pois {
		require.NoError(t, db.Create(&pois[i]).Error)
	}
	return db
}

func ratingPtr(v float64) *float64 { return &v }
func tierPtr(v string) *string     { return &v }

func TestRankScore(t *testing.T) {
	q := Query{Categories: []string{"museum", "art_gallery"}, Budget: model.BudgetMedium}

	t.Run("primary category match", func(t *testing.T) {
		p := orm.POI{Category: "museum", Rating: ratingPtr(4.0)}
		// 2*4.0 + 3*1.0 = 11.0
		assert.InDelta(t, 11.0, rankScore(&p, q), 1e-9)
	})

	t.Run("secondary category match", func(t *testing.T) {
		p := orm.POI{Category: "art_gallery", Rating: ratingPtr(4.0)}
		// 2*4.0 + 3*0.6 = 9.8
		assert.InDelta(t, 9.8, rankScore(&p, q), 1e-9)
	})

	t.Run("tag match", func(t *testing.T) {
		p := orm.POI{Category: "attraction", Tags: "museum", Rating: ratingPtr(4.0)}
		// 2*4.0 + 3*0.3 = 8.9
		assert.InDelta(t, 8.9, rankScore(&p, q), 1e-9)
	})

	t.Run("missing rating defaults", func(t *testing.T) {
		p := orm.POI{Category: "museum"}
		// 2*3.5 + 3*1.0 = 10.0
		assert.InDelta(t, 10.0, rankScore(&p, q), 1e-9)
	})

	t.Run("budget mismatch penalty", func(t *testing.T) {
		p := orm.POI{Category: "museum", Rating: ratingPtr(4.0), PriceTier: tierPtr("high")}
		// 11.0 - 0.5*1 = 10.5
		assert.InDelta(t, 10.5, rankScore(&p, q), 1e-9)

		lowQ := q
		lowQ.Budget = model.BudgetLow
		// distance low..high is 2: 11.0 - 1.0
		assert.InDelta(t, 10.0, rankScore(&p, lowQ), 1e-9)
	})
}

func TestLocalProviderSearch(t *testing.T) {
	db := setupLocalDB(t,
		orm.POI{ID: "a", Name: "A", City: "paris", Category: "museum", Rating: ratingPtr(3.0)},
		orm.POI{ID: "b", Name: "B", City: "paris", Category: "museum", Rating: ratingPtr(5.0)},
		orm.POI{ID: "c", Name: "C", City: "paris", Category: "cafe"},
	)
	p := NewLocalProvider(db)

	got, err := p.Search(context.Background(), Query{
		City:       "Paris",
		Categories: []string{"museum"},
		Limit:      10,
	})
	assert.NoError(t, err)
	require.Len(t, got, 2)
	// Higher rating first.
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Greater(t, got[0].RankScore, got[1].RankScore)
}

func TestLocalProviderLimit(t *testing.T) {
	pois := make([]orm.POI, 0, 15)
	for i := 0; i < 15; i++ {
		pois = append(pois, orm.POI{
			ID:       string(rune('a' + i)),
			City:     "paris",
			Category: "restaurant",
		})
	}
	p := NewLocalProvider(setupLocalDB(t, pois...))

	got, err := p.Search(context.Background(), Query{City: "paris", Categories: []string{"restaurant"}, Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestSortByRankDeterministic(t *testing.T) {
	cs := []model.POICandidate{
		{ID: "z", RankScore: 5},
		{ID: "a", RankScore: 5},
		{ID: "m", RankScore: 7},
	}
	sortByRank(cs)
	assert.Equal(t, "m", cs[0].ID)
	// Ties break by ID.
	assert.Equal(t, "a", cs[1].ID)
	assert.Equal(t, "z", cs[2].ID)
}
