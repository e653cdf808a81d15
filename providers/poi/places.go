package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
	"gorm.io/gorm"

	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
)

// PlacesProvider adapts the Google Places text search into the provider
// schema. Upstream ratings feed the rank score on the same scale the
// local provider uses.
type PlacesProvider struct {
	client *maps.Client

	// Optional response cache; nil disables caching.
	CacheDB  *gorm.DB
	CacheTTL time.Duration
}

var _ Provider = (*PlacesProvider)(nil)

// NewPlacesProvider creates a Places-backed provider.
func NewPlacesProvider(apiKey string) (*PlacesProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesProvider{client: c, CacheTTL: 24 * time.Hour}, nil
}

// Search implements Provider using a text search on the primary category.
func (p *PlacesProvider) Search(ctx context.Context, q Query) ([]model.POICandidate, error) {
	if p.client == nil {
		return nil, fmt.Errorf("maps client not initialized")
	}
	if len(q.Categories) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}

	query := fmt.Sprintf("%s in %s", strings.ReplaceAll(q.Categories[0], "_", " "), q.City)

	cacheKey := orm.CacheKey("places", query, string(q.Budget))
	if p.CacheDB != nil {
		if entry, err := orm.GetCacheEntry(p.CacheDB, cacheKey); err == nil {
			var cached []model.POICandidate
			if json.Unmarshal(entry.Value, &cached) == nil {
				return truncate(cached, q.Limit), nil
			}
		}
	}

	req := &maps.TextSearchRequest{Query: query}
	if q.Center != nil {
		req.Location = &maps.LatLng{Lat: q.Center.Lat, Lng: q.Center.Lng}
		req.Radius = 10000
	}

	resp, err := p.client.TextSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("text search failed: %w", err)
	}

	out := make([]model.POICandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := model.POICandidate{
			ID:       "gp:" + r.PlaceID,
			Name:     r.Name,
			Category: q.Categories[0],
			Tags:     r.Types,
			Location: r.FormattedAddress,
			Coords: &model.LatLng{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
			// Upstream rating drives the rank on the local scale.
			RankScore: ratingWeight * float64(r.Rating),
		}
		if r.Rating > 0 {
			rating := float64(r.Rating)
			c.Rating = &rating
		}
		if tier, ok := priceTier(r.PriceLevel); ok {
			c.PriceTier = &tier
		}
		out = append(out, c)
	}
	sortByRank(out)

	if p.CacheDB != nil {
		if payload, err := json.Marshal(out); err == nil {
			_ = orm.SetCacheEntry(p.CacheDB, cacheKey, payload, p.CacheTTL)
		}
	}
	return truncate(out, q.Limit), nil
}

// Geocode resolves a free-text address to coordinates. Used to pin down
// hotel locations that come in without coordinates.
func (p *PlacesProvider) Geocode(ctx context.Context, address string) (*model.LatLng, error) {
	if p.client == nil {
		return nil, fmt.Errorf("maps client not initialized")
	}
	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocode results for %q", address)
	}
	return &model.LatLng{
		Lat: results[0].Geometry.Location.Lat,
		Lng: results[0].Geometry.Location.Lng,
	}, nil
}

func priceTier(level int) (model.Budget, bool) {
	switch {
	case level <= 0:
		return "", false
	case level == 1:
		return model.BudgetLow, true
	case level == 2:
		return model.BudgetMedium, true
	default:
		return model.BudgetHigh, true
	}
}
