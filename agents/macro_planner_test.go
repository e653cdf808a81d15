package agents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skanade/tripweaver/model"
)

// fakeLLM replays scripted responses in order.
type fakeLLM struct {
	responses []json.RawMessage
	errs      []error
	calls     int
}

func (f *fakeLLM) GenerateStructured(_ context.Context, _, _ string, _ int) (json.RawMessage, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, errors.New("no scripted response")
}

func planSpec(city string, start model.Date, days int, pace model.Pace, interests ...string) *model.TripSpec {
	return &model.TripSpec{
		TripID:    "trip-" + city,
		City:      city,
		StartDate: start,
		EndDate:   start.AddDays(days - 1),
		Travelers: 2,
		Pace:      pace,
		Budget:    model.BudgetMedium,
		Interests: interests,
		Routine:   model.DefaultRoutine(),
	}
}

func block(blockType, start, end, theme string, categories ...string) llmBlock {
	return llmBlock{
		BlockType:         blockType,
		StartTime:         start,
		EndTime:           end,
		Theme:             theme,
		DesiredCategories: categories,
	}
}

func standardDay(theme string, extra ...llmBlock) llmDay {
	blocks := []llmBlock{
		block("meal", "08:30:00", "09:30:00", "breakfast", "restaurant", "cafe"),
		block("activity", "10:00:00", "12:00:00", "morning walk", "attraction"),
		block("meal", "12:30:00", "13:30:00", "lunch", "restaurant"),
		block("activity", "14:30:00", "17:30:00", "afternoon", "attraction", "landmark"),
		block("rest", "17:30:00", "18:30:00", "back at the hotel"),
		block("meal", "19:30:00", "21:00:00", "dinner", "restaurant"),
	}
	blocks = append(blocks, extra...)
	return llmDay{Theme: theme, Blocks: blocks}
}

func payload(t *testing.T, days ...llmDay) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(llmMacroPayload{Days: days})
	require.NoError(t, err)
	return data
}

func TestMacroPlannerTwoDayTrip(t *testing.T) {
	spec := planSpec("Paris", model.NewDate(2024, time.June, 15), 2, model.PaceMedium, "gastronomy", "history")
	fake := &fakeLLM{responses: []json.RawMessage{
		payload(t, standardDay("left bank"), standardDay("right bank")),
	}}

	plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, plan.Days, 2)

	for i, day := range plan.Days {
		assert.Equal(t, i+1, day.DayNumber)
		assert.True(t, day.Date.Equal(spec.StartDate.AddDays(i).Time))
		assert.GreaterOrEqual(t, len(day.Blocks), 5)

		// Every meal block starts inside its routine window.
		for _, b := range day.Blocks {
			if b.BlockType != model.BlockMeal {
				continue
			}
			inWindow := spec.Routine.Breakfast.Contains(b.StartTime) ||
				spec.Routine.Lunch.Contains(b.StartTime) ||
				spec.Routine.Dinner.Contains(b.StartTime)
			assert.True(t, inWindow, "meal at %s outside all routine windows", b.StartTime)
		}
	}
}

func TestMacroPlannerStripsMuseumWithoutCulturalInterest(t *testing.T) {
	spec := planSpec("Rome", model.NewDate(2024, time.November, 1), 2, model.PaceMedium, "gastronomy", "architecture")
	day1 := standardDay("ancient rome")
	// The model slips a museum into an activity block.
	day1.Blocks[1].DesiredCategories = []string{"museum", "attraction"}
	fake := &fakeLLM{responses: []json.RawMessage{
		payload(t, day1, standardDay("trastevere")),
	}}

	plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
	require.NoError(t, err)

	for _, day := range plan.Days {
		for _, b := range day.Blocks {
			assert.NotContains(t, b.DesiredCategories, "museum")
		}
	}
}

func TestMacroPlannerKeepsNightlifeForNightlifeInterest(t *testing.T) {
	spec := planSpec("Berlin", model.NewDate(2024, time.October, 1), 2, model.PaceFast, "nightlife", "techno")
	day1 := standardDay("kreuzberg",
		block("nightlife", "22:00:00", "01:30:00", "club night", "nightclub", "bar"))
	fake := &fakeLLM{responses: []json.RawMessage{
		payload(t, day1, standardDay("mitte")),
	}}

	plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
	require.NoError(t, err)

	var nightlife []model.SkeletonBlock
	for _, day := range plan.Days {
		for _, b := range day.Blocks {
			if b.BlockType == model.BlockNightlife {
				nightlife = append(nightlife, b)
			}
		}
	}
	require.NotEmpty(t, nightlife)
	assert.Greater(t, nightlife[0].EndTime, model.ClockTime(0))
	assert.True(t, nightlife[0].WrapsMidnight() || nightlife[0].EndTime > model.NewClockTime(23, 0, 0))
}

func TestMacroPlannerDropsUnjustifiedNightlife(t *testing.T) {
	spec := planSpec("Vienna", model.NewDate(2024, time.May, 1), 1, model.PaceSlow, "museums")
	day1 := standardDay("museumsquartier",
		block("nightlife", "22:00:00", "00:30:00", "bar hop", "bar"))
	fake := &fakeLLM{responses: []json.RawMessage{payload(t, day1)}}

	plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
	require.NoError(t, err)

	for _, b := range plan.Days[0].Blocks {
		assert.NotEqual(t, model.BlockNightlife, b.BlockType)
	}
}

func TestMacroPlannerSubstitutesDefaultsWhenStripped(t *testing.T) {
	spec := planSpec("Lisbon", model.NewDate(2024, time.April, 1), 1, model.PaceMedium, "nature")
	day1 := standardDay("alfama")
	// Activity requesting only forbidden categories falls back to defaults.
	day1.Blocks[1].DesiredCategories = []string{"shopping", "boutique"}
	fake := &fakeLLM{responses: []json.RawMessage{payload(t, day1)}}

	plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
	require.NoError(t, err)

	activity := plan.Days[0].Blocks[1]
	assert.Equal(t, model.BlockActivity, activity.BlockType)
	assert.Equal(t, defaultActivityCategories, activity.DesiredCategories)
}

func TestMacroPlannerNormalizesTimes(t *testing.T) {
	spec := planSpec("Madrid", model.NewDate(2024, time.March, 1), 1, model.PaceMedium, "gastronomy")
	day1 := standardDay("centro")
	day1.Blocks[0].StartTime = "8:30:0"
	day1.Blocks[0].EndTime = "9:30:00"
	fake := &fakeLLM{responses: []json.RawMessage{payload(t, day1)}}

	plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, model.NewClockTime(8, 30, 0), plan.Days[0].Blocks[0].StartTime)
	assert.Equal(t, model.NewClockTime(9, 30, 0), plan.Days[0].Blocks[0].EndTime)
}

func TestMacroPlannerSystemPromptStatesDailyShape(t *testing.T) {
	spec := planSpec("Paris", model.NewDate(2024, time.June, 15), 2, model.PaceSlow, "gastronomy")
	prompt := NewMacroPlanner(&fakeLLM{}, nil).systemPrompt(spec)

	assert.Contains(t, prompt, "exactly 3 meal blocks")
	assert.Contains(t, prompt, "2 to 4 activity blocks")
	assert.Contains(t, prompt, "at least one rest block")
	assert.Contains(t, prompt, "Pace sets intensity")
	assert.Contains(t, prompt, "Budget sets venue tier")
}

func TestMacroPlannerRetries(t *testing.T) {
	spec := planSpec("Oslo", model.NewDate(2024, time.July, 1), 1, model.PaceMedium, "nature")

	t.Run("recovers on a later attempt", func(t *testing.T) {
		fake := &fakeLLM{
			responses: []json.RawMessage{
				json.RawMessage(`{"days": []}`), // wrong day count
				nil,
				payload(t, standardDay("fjord day")),
			},
			errs: []error{nil, errors.New("upstream timeout"), nil},
		}
		plan, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
		require.NoError(t, err)
		assert.Len(t, plan.Days, 1)
		assert.Equal(t, 3, fake.calls)
	})

	t.Run("fails after three attempts", func(t *testing.T) {
		fake := &fakeLLM{errs: []error{
			errors.New("boom"), errors.New("boom"), errors.New("boom"),
		}}
		_, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
		assert.ErrorIs(t, err, ErrMacroPlanGenerationFailed)
		assert.Equal(t, 3, fake.calls)
	})

	t.Run("day without a dinner meal is rejected", func(t *testing.T) {
		day := standardDay("rushed day")
		day.Blocks = day.Blocks[:5] // drop the dinner block
		fake := &fakeLLM{responses: []json.RawMessage{
			payload(t, day), payload(t, day), payload(t, day),
		}}
		_, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
		assert.ErrorIs(t, err, ErrMacroPlanGenerationFailed)
		assert.Equal(t, 3, fake.calls)
	})

	t.Run("meal outside its window is rejected", func(t *testing.T) {
		day := standardDay("late diner")
		day.Blocks[5].StartTime = "21:45:00" // dinner past the window
		day.Blocks[5].EndTime = "22:30:00"
		fake := &fakeLLM{responses: []json.RawMessage{
			payload(t, day), payload(t, day), payload(t, day),
		}}
		_, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
		assert.ErrorIs(t, err, ErrMacroPlanGenerationFailed)
	})

	t.Run("unknown block type is rejected", func(t *testing.T) {
		day := standardDay("bad day", block("brunch", "11:00:00", "12:00:00", "brunch", "cafe"))
		fake := &fakeLLM{responses: []json.RawMessage{
			payload(t, day), payload(t, day), payload(t, day),
		}}
		_, err := NewMacroPlanner(fake, nil).Generate(context.Background(), spec)
		assert.ErrorIs(t, err, ErrMacroPlanGenerationFailed)
	})
}
