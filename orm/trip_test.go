package orm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/skanade/tripweaver/model"
)

func testSpec(tripID string) *model.TripSpec {
	return &model.TripSpec{
		TripID:    tripID,
		City:      "Paris",
		StartDate: model.NewDate(2024, time.June, 15),
		EndDate:   model.NewDate(2024, time.June, 16),
		Travelers: 2,
		Pace:      model.PaceMedium,
		Budget:    model.BudgetMedium,
		Interests: []string{"gastronomy"},
		Routine:   model.DefaultRoutine(),
	}
}

func TestTripRoundTrip(t *testing.T) {
	db := SetupTestDB(t)

	spec := testSpec("trip-rt")
	assert.NoError(t, CreateTrip(db, spec))

	loaded, err := GetTripSpec(db, "trip-rt")
	assert.NoError(t, err)
	assert.Equal(t, spec.City, loaded.City)
	assert.Equal(t, spec.Interests, loaded.Interests)
	assert.True(t, loaded.StartDate.Equal(spec.StartDate.Time))

	_, err = GetTripSpec(db, "no-such-trip")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPlanRecordStages(t *testing.T) {
	db := SetupTestDB(t)

	rec, err := GetPlanRecord(db, "trip-stages")
	assert.NoError(t, err)
	assert.Nil(t, rec.MacroPlan)
	assert.Nil(t, rec.MacroPlanCreatedAt)

	at := time.Now().UTC()
	assert.NoError(t, SaveStage(db, "trip-stages", StageMacroPlan, []byte(`{"days":[]}`), at))
	assert.NoError(t, SaveStage(db, "trip-stages", StagePOIPlan, []byte(`{"blocks":[]}`), at))
	assert.NoError(t, SaveStage(db, "trip-stages", StageItinerary, []byte(`{"days":[]}`), at))
	assert.NoError(t, SaveStage(db, "trip-stages", StageCritique, []byte(`[]`), at))

	rec, err = GetPlanRecord(db, "trip-stages")
	assert.NoError(t, err)
	assert.NotNil(t, rec.MacroPlan)
	assert.NotNil(t, rec.POIPlan)
	assert.NotNil(t, rec.Itinerary)
	assert.NotNil(t, rec.Critique)
	assert.NotNil(t, rec.MacroPlanCreatedAt)

	assert.Error(t, SaveStage(db, "trip-stages", Stage("bogus"), nil, at))
}

func TestFindPlanRecordDoesNotCreate(t *testing.T) {
	db := SetupTestDB(t)

	rec, err := FindPlanRecord(db, "trip-absent")
	assert.NoError(t, err)
	assert.Nil(t, rec.MacroPlan)

	// Reading an absent record leaves no row behind.
	var n int64
	assert.NoError(t, db.Model(&PlanRecord{}).Where("trip_id = ?", "trip-absent").Count(&n).Error)
	assert.Zero(t, n)

	// An existing record is returned as stored.
	_, err = GetPlanRecord(db, "trip-present")
	assert.NoError(t, err)
	at := time.Now().UTC()
	assert.NoError(t, SaveStage(db, "trip-present", StageMacroPlan, []byte(`{"days":[]}`), at))

	rec, err = FindPlanRecord(db, "trip-present")
	assert.NoError(t, err)
	assert.NotNil(t, rec.MacroPlan)
}

func TestClearStageClearsDownstream(t *testing.T) {
	db := SetupTestDB(t)
	at := time.Now().UTC()

	_, err := GetPlanRecord(db, "trip-clear")
	assert.NoError(t, err)
	for _, s := range []Stage{StageMacroPlan, StagePOIPlan, StageItinerary, StageCritique} {
		assert.NoError(t, SaveStage(db, "trip-clear", s, []byte(`{}`), at))
	}

	// Clearing the POI plan must also clear itinerary and critique, but
	// leave the macro plan alone.
	assert.NoError(t, ClearStage(db, "trip-clear", StagePOIPlan))

	rec, err := GetPlanRecord(db, "trip-clear")
	assert.NoError(t, err)
	assert.NotNil(t, rec.MacroPlan)
	assert.Nil(t, rec.POIPlan)
	assert.Nil(t, rec.POIPlanCreatedAt)
	assert.Nil(t, rec.Itinerary)
	assert.Nil(t, rec.Critique)

	assert.Error(t, ClearStage(db, "trip-clear", Stage("bogus")))
}

func TestWithTripLock(t *testing.T) {
	db := SetupTestDB(t)

	// Creates the record when missing and commits the inner write.
	err := WithTripLock(db, "trip-lock", func(tx *gorm.DB) error {
		return SaveStage(tx, "trip-lock", StageMacroPlan, []byte(`{}`), time.Now().UTC())
	})
	assert.NoError(t, err)

	rec, err := GetPlanRecord(db, "trip-lock")
	assert.NoError(t, err)
	assert.NotNil(t, rec.MacroPlan)

	// An error from fn rolls the transaction back.
	err = WithTripLock(db, "trip-lock-2", func(tx *gorm.DB) error {
		if err := SaveStage(tx, "trip-lock-2", StageMacroPlan, []byte(`{}`), time.Now().UTC()); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	rec, err = GetPlanRecord(db, "trip-lock-2")
	assert.NoError(t, err)
	assert.Nil(t, rec.MacroPlan)
}
