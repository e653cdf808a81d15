// Package agents implements the planning pipeline: macro planner, POI
// planner, route optimizer, trip critic, and the orchestrator that
// sequences them with per-stage persistence.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/providers/holidays"
	"github.com/skanade/tripweaver/providers/llm"
)

// interestCategories maps a traveler interest onto the POI categories a
// skeleton block may request for it. The first category is primary.
var interestCategories = map[string][]string{
	"gastronomy":      {"restaurant", "cafe", "food"},
	"museums":         {"museum", "art_gallery", "attraction"},
	"modern art":      {"art_gallery", "museum", "attraction"},
	"nightlife":       {"bar", "nightclub", "nightlife"},
	"views":           {"viewpoint", "attraction", "park"},
	"architecture":    {"attraction", "landmark", "viewpoint"},
	"shopping":        {"shopping", "market", "boutique"},
	"nature":          {"park", "garden", "nature"},
	"history":         {"landmark", "monument", "attraction"},
	"beach and water": {"beach", "waterfront", "lake"},
}

// Fallbacks when sanitization strips every category from a block.
var (
	defaultMealCategories     = []string{"restaurant", "cafe", "local_cuisine"}
	defaultActivityCategories = []string{"attraction", "landmark", "park"}
)

const macroAttempts = 3

// HolidaySource supplies public holidays overlapping the trip. The
// macro planner uses them as prompt context only.
type HolidaySource interface {
	HolidaysInRange(ctx context.Context, countryCode string, start, end model.Date) ([]holidays.Holiday, error)
}

// MacroPlanner turns a trip spec into a day-by-day skeleton of themed,
// typed time blocks via a structured LLM call, then repairs and
// validates the result deterministically.
type MacroPlanner struct {
	LLM      llm.Client
	Holidays HolidaySource // optional
}

// NewMacroPlanner creates a macro planner over the given LLM client.
func NewMacroPlanner(client llm.Client, holidaySource HolidaySource) *MacroPlanner {
	return &MacroPlanner{LLM: client, Holidays: holidaySource}
}

// llmDay and llmBlock are the shapes the model is asked to produce.
// Day numbers and dates are derived from position, never trusted.
type llmDay struct {
	Theme  string     `json:"theme"`
	Blocks []llmBlock `json:"blocks"`
}

type llmBlock struct {
	BlockType         string   `json:"block_type"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	Theme             string   `json:"theme"`
	DesiredCategories []string `json:"desired_categories"`
}

type llmMacroPayload struct {
	Days []llmDay `json:"days"`
}

// Generate produces a validated macro plan for the spec. It retries the
// whole generate-parse-validate cycle up to three times and wraps the
// last failure in ErrMacroPlanGenerationFailed.
func (p *MacroPlanner) Generate(ctx context.Context, spec *model.TripSpec) (*model.MacroPlan, error) {
	system := p.systemPrompt(spec)
	user := p.userPrompt(ctx, spec)
	maxTokens := 4096
	if spec.Days() > 3 {
		maxTokens = 8192
	}

	var lastErr error
	for attempt := 1; attempt <= macroAttempts; attempt++ {
		raw, err := p.LLM.GenerateStructured(ctx, system, user, maxTokens)
		if err != nil {
			lastErr = err
			log.Warnf(ctx, "macro generation attempt %d/%d failed: %v", attempt, macroAttempts, err)
			continue
		}

		plan, err := p.buildPlan(spec, raw)
		if err != nil {
			lastErr = err
			log.Warnf(ctx, "macro plan attempt %d/%d rejected: %v", attempt, macroAttempts, err)
			continue
		}
		return plan, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrMacroPlanGenerationFailed, lastErr)
}

// buildPlan parses, repairs and validates one model response.
func (p *MacroPlanner) buildPlan(spec *model.TripSpec, raw json.RawMessage) (*model.MacroPlan, error) {
	var payload llmMacroPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	plan := &model.MacroPlan{TripID: spec.TripID}
	for i, day := range payload.Days {
		skeleton := model.DaySkeleton{
			DayNumber: i + 1,
			Date:      spec.StartDate.AddDays(i),
			Theme:     day.Theme,
		}
		for _, b := range day.Blocks {
			blockType, err := model.ParseBlockType(b.BlockType)
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", i+1, err)
			}
			block := model.SkeletonBlock{
				BlockType:         blockType,
				StartTime:         model.MustClock(b.StartTime),
				EndTime:           model.MustClock(b.EndTime),
				Theme:             b.Theme,
				DesiredCategories: b.DesiredCategories,
			}
			sanitized, keep := sanitizeBlock(block, spec.Interests)
			if !keep {
				continue
			}
			skeleton.Blocks = append(skeleton.Blocks, sanitized)
		}
		plan.Days = append(plan.Days, skeleton)
	}

	if err := plan.Validate(spec); err != nil {
		return nil, err
	}
	return plan, nil
}

// sanitizeBlock enforces the interest contract on a block's categories.
// Categories the interests do not justify are stripped; a POI block left
// empty gets type defaults, except nightlife which is dropped entirely.
func sanitizeBlock(b model.SkeletonBlock, interests []string) (model.SkeletonBlock, bool) {
	if !b.BlockType.NeedsPOI() {
		b.DesiredCategories = nil
		return b, true
	}
	if b.BlockType == model.BlockNightlife && !hasInterest(interests, "nightlife", "bars", "clubs") {
		return b, false
	}

	kept := make([]string, 0, len(b.DesiredCategories))
	for _, cat := range b.DesiredCategories {
		if categoryAllowed(cat, interests) {
			kept = append(kept, cat)
		}
	}
	if len(kept) == 0 {
		switch b.BlockType {
		case model.BlockMeal:
			kept = defaultMealCategories
		case model.BlockActivity:
			kept = defaultActivityCategories
		default:
			return b, false
		}
	}
	b.DesiredCategories = kept
	return b, true
}

// categoryAllowed applies the exclusion rules: museum-family categories
// need a cultural interest, shopping needs the shopping interest, and
// nightlife categories need a nightlife interest.
func categoryAllowed(category string, interests []string) bool {
	switch strings.ToLower(category) {
	case "museum", "art_gallery":
		return hasInterest(interests, "museums", "art", "modern art", "history")
	case "shopping", "market", "boutique":
		return hasInterest(interests, "shopping")
	case "bar", "nightclub", "nightlife":
		return hasInterest(interests, "nightlife", "bars", "clubs")
	}
	return true
}

func hasInterest(interests []string, wanted ...string) bool {
	for _, have := range interests {
		for _, want := range wanted {
			if strings.EqualFold(strings.TrimSpace(have), want) {
				return true
			}
		}
	}
	return false
}

func (p *MacroPlanner) systemPrompt(spec *model.TripSpec) string {
	var sb strings.Builder
	sb.WriteString(`You are a travel planner that designs day skeletons for city trips.
Respond with JSON only, matching this shape exactly:
{"days":[{"theme":"...","blocks":[{"block_type":"...","start_time":"HH:MM:SS","end_time":"HH:MM:SS","theme":"...","desired_categories":["..."]}]}]}

Rules:
- block_type is one of: meal, activity, nightlife, rest, travel.
- Every meal, activity and nightlife block must list desired_categories; rest and travel blocks must not.
- Blocks within a day are ordered by start_time and must not overlap.
- Only nightlife blocks may end after midnight (end_time earlier than start_time).
- Every day has exactly 3 meal blocks (breakfast, lunch, dinner), each starting inside the traveler's matching meal window, plus 2 to 4 activity blocks.
- Slow or medium pace requires at least one rest block per day; fast pace may skip rest.
- Pace sets intensity: slow means 2 relaxed activities, medium 2-3, fast 3-4 tightly packed.
- Budget sets venue tier: low favors street food and free sights, medium mid-range venues, high fine dining and premium attractions.
- Keep all blocks between the wake and sleep times, nightlife excepted.
`)

	sb.WriteString("\nCategory vocabulary per interest:\n")
	for _, interest := range spec.Interests {
		key := strings.ToLower(strings.TrimSpace(interest))
		if cats, ok := interestCategories[key]; ok {
			fmt.Fprintf(&sb, "- %s: %s\n", key, strings.Join(cats, ", "))
		}
	}
	sb.WriteString(`
Only request museum or art_gallery categories when the traveler's interests include museums, art or history.
Only request shopping, market or boutique categories when the interests include shopping.
Only plan nightlife blocks or bar/nightclub categories when the interests include nightlife, bars or clubs.
`)
	return sb.String()
}

func (p *MacroPlanner) userPrompt(ctx context.Context, spec *model.TripSpec) string {
	r := spec.Routine
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan a %d-day trip to %s, %s to %s, for %d traveler(s).\n",
		spec.Days(), spec.City, spec.StartDate, spec.EndDate, spec.Travelers)
	fmt.Fprintf(&sb, "Pace: %s. Budget: %s. Interests: %s.\n",
		spec.Pace, spec.Budget, strings.Join(spec.Interests, ", "))
	fmt.Fprintf(&sb, "Daily routine: wake %s, sleep %s. Breakfast %s-%s, lunch %s-%s, dinner %s-%s.\n",
		r.WakeTime, r.SleepTime, r.Breakfast.Start, r.Breakfast.End,
		r.Lunch.Start, r.Lunch.End, r.Dinner.Start, r.Dinner.End)
	if spec.Preferences != "" {
		fmt.Fprintf(&sb, "Preferences: %s\n", spec.Preferences)
	}

	if p.Holidays != nil && spec.CountryCode != "" {
		hs, err := p.Holidays.HolidaysInRange(ctx, spec.CountryCode, spec.StartDate, spec.EndDate)
		if err != nil {
			log.Warnf(ctx, "holiday lookup failed, planning without holiday context: %v", err)
		} else if len(hs) > 0 {
			sb.WriteString("Public holidays during the trip (expect closures and crowds):\n")
			for _, h := range hs {
				fmt.Fprintf(&sb, "- %s: %s\n", h.Date, h.Name)
			}
		}
	}
	return sb.String()
}
