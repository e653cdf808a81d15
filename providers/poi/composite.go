package poi

import (
	"context"
	"time"

	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
)

// CompositeProvider runs the local store first and tops up from the
// external provider when the local result is thin. External failures
// are swallowed; local failures surface.
type CompositeProvider struct {
	Local    Provider
	External Provider
	Timeout  time.Duration
}

var _ Provider = (*CompositeProvider)(nil)

// NewCompositeProvider combines the two tiers. External may be nil.
func NewCompositeProvider(local, external Provider) *CompositeProvider {
	return &CompositeProvider{
		Local:    local,
		External: external,
		Timeout:  10 * time.Second,
	}
}

// Search implements Provider.
func (p *CompositeProvider) Search(ctx context.Context, q Query) ([]model.POICandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	local, err := p.Local.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	// Enough local coverage: no external call.
	threshold := (q.Limit + 1) / 2
	if len(local) >= threshold || p.External == nil {
		return truncate(local, q.Limit), nil
	}

	external, err := p.External.Search(ctx, q)
	if err != nil {
		log.Warnf(ctx, "external poi search failed, keeping local results: %v", err)
		return truncate(local, q.Limit), nil
	}

	// Merge by POI id; local wins on duplicates.
	seen := make(map[string]bool, len(local))
	merged := make([]model.POICandidate, 0, len(local)+len(external))
	for _, c := range local {
		seen[c.ID] = true
		merged = append(merged, c)
	}
	for _, c := range external {
		if !seen[c.ID] {
			merged = append(merged, c)
		}
	}
	sortByRank(merged)
	return truncate(merged, q.Limit), nil
}
