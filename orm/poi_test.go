package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "sao paulo", NormalizeCity("São Paulo"))
	assert.Equal(t, "malmo", NormalizeCity("Malmö"))
	assert.Equal(t, "paris", NormalizeCity("  Paris "))
	assert.Equal(t, "paris", NormalizeCity("PARIS"))
}

func TestTagList(t *testing.T) {
	p := POI{Tags: "cafe, brunch ,bakery"}
	assert.Equal(t, []string{"cafe", "brunch", "bakery"}, p.TagList())

	empty := POI{}
	assert.Nil(t, empty.TagList())
}

func TestToCandidate(t *testing.T) {
	rating := 4.5
	tier := "high"
	lat, lng := 48.8606, 2.3376
	p := POI{
		ID:        "poi-louvre",
		Name:      "Louvre",
		City:      "paris",
		Category:  "museum",
		Tags:      "art,landmark",
		Rating:    &rating,
		PriceTier: &tier,
		Address:   "Rue de Rivoli",
		Lat:       &lat,
		Lng:       &lng,
	}

	c := p.ToCandidate()
	assert.Equal(t, "poi-louvre", c.ID)
	assert.Equal(t, []string{"art", "landmark"}, c.Tags)
	assert.Equal(t, "Rue de Rivoli", c.Location)
	assert.NotNil(t, c.Coords)
	assert.Equal(t, 48.8606, c.Coords.Lat)
	assert.NotNil(t, c.PriceTier)
}

func TestSearchPOIs(t *testing.T) {
	db := SetupTestDB(t)

	rows := []POI{
		{ID: "p1", Name: "Musee d'Orsay", City: "paris", Category: "museum"},
		{ID: "p2", Name: "Cafe de Flore", City: "paris", Category: "cafe", Tags: "food,brunch"},
		{ID: "p3", Name: "Berghain", City: "berlin", Category: "nightclub"},
		{ID: "p4", Name: "Le Jules Verne", City: "paris", Category: "restaurant", Tags: "fine_dining"},
	}
	for i := range rows {
		assert.NoError(t, db.Create(&rows[i]).Error)
	}

	t.Run("category match", func(t *testing.T) {
		got, err := SearchPOIs(db, "Paris", []string{"museum"})
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "p1", got[0].ID)
	})

	t.Run("tag match", func(t *testing.T) {
		got, err := SearchPOIs(db, "paris", []string{"food"})
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "p2", got[0].ID)
	})

	t.Run("city filter", func(t *testing.T) {
		got, err := SearchPOIs(db, "berlin", []string{"nightclub"})
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "p3", got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := SearchPOIs(db, "paris", []string{"beach"})
		assert.NoError(t, err)
		assert.Empty(t, got)
	})
}
