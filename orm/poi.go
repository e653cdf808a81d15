package orm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/skanade/tripweaver/model"
)

// POI is one row of the indexed point-of-interest store. Seeding the
// store is owned by an external collaborator; the pipeline only reads.
type POI struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	City      string `gorm:"index"` // normalized, see NormalizeCity
	Category  string `gorm:"index"`
	Tags      string // comma-separated secondary tags
	Rating    *float64
	PriceTier *string
	Address   string
	Lat       *float64
	Lng       *float64
}

var cityFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCity lowercases a city name and strips diacritics so that
// "São Paulo" and "sao paulo" hit the same index entries.
func NormalizeCity(city string) string {
	folded, _, err := transform.String(cityFolder, city)
	if err != nil {
		folded = city
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// TagList splits the stored tag string.
func (p *POI) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ToCandidate converts a stored POI into the wire candidate shape.
// RankScore is left to the provider's ranking function.
func (p *POI) ToCandidate() model.POICandidate {
	c := model.POICandidate{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Tags:     p.TagList(),
		Rating:   p.Rating,
		Location: p.Address,
	}
	if p.PriceTier != nil {
		tier := model.Budget(*p.PriceTier)
		c.PriceTier = &tier
	}
	if p.Lat != nil && p.Lng != nil {
		c.Coords = &model.LatLng{Lat: *p.Lat, Lng: *p.Lng}
	}
	return c
}

// SearchPOIs returns every POI in the city whose category or tag set
// intersects the requested categories. Ranking and truncation happen in
// the provider layer.
func SearchPOIs(db *gorm.DB, city string, categories []string) ([]POI, error) {
	var rows []POI
	err := db.Where("city = ?", NormalizeCity(city)).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[strings.ToLower(c)] = true
	}

	out := make([]POI, 0, len(rows))
	for _, p := range rows {
		if wanted[strings.ToLower(p.Category)] {
			out = append(out, p)
			continue
		}
		for _, tag := range p.TagList() {
			if wanted[strings.ToLower(tag)] {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}
