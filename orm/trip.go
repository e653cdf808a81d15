package orm

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skanade/tripweaver/model"
)

// Trip stores the collaborator-owned trip spec. The pipeline reads it
// and never writes it.
type Trip struct {
	ID        string `gorm:"primaryKey"`
	Spec      []byte // TripSpec JSON
	CreatedAt time.Time
}

// PlanRecord is the single persistence unit for one trip's pipeline
// outputs. A null stage field means "stage not yet run".
type PlanRecord struct {
	TripID             string `gorm:"primaryKey"`
	MacroPlan          []byte
	MacroPlanCreatedAt *time.Time
	POIPlan            []byte     `gorm:"column:poi_plan"`
	POIPlanCreatedAt   *time.Time `gorm:"column:poi_plan_created_at"`
	Itinerary          []byte
	ItineraryCreatedAt *time.Time
	Critique           []byte
	CritiqueCreatedAt  *time.Time
	UpdatedAt          time.Time
}

// Stage names a pipeline stage's field pair on the PlanRecord.
type Stage string

const (
	StageMacroPlan Stage = "macro_plan"
	StagePOIPlan   Stage = "poi_plan"
	StageItinerary Stage = "itinerary"
	StageCritique  Stage = "critique"
)

// CreateTrip persists a trip spec under its trip ID.
func CreateTrip(db *gorm.DB, spec *model.TripSpec) error {
	payload, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal trip spec: %w", err)
	}
	return db.Create(&Trip{ID: spec.TripID, Spec: payload, CreatedAt: time.Now().UTC()}).Error
}

// GetTripSpec loads a trip spec by ID. Returns gorm.ErrRecordNotFound
// for unknown trips; callers map it to their own error surface.
func GetTripSpec(db *gorm.DB, tripID string) (*model.TripSpec, error) {
	var trip Trip
	if err := db.First(&trip, "id = ?", tripID).Error; err != nil {
		return nil, err
	}
	var spec model.TripSpec
	if err := json.Unmarshal(trip.Spec, &spec); err != nil {
		return nil, fmt.Errorf("decode trip spec: %w", err)
	}
	return &spec, nil
}

// GetPlanRecord loads the plan record for a trip, creating an empty one
// if none exists yet.
func GetPlanRecord(db *gorm.DB, tripID string) (*PlanRecord, error) {
	var rec PlanRecord
	err := db.First(&rec, "trip_id = ?", tripID).Error
	if err == gorm.ErrRecordNotFound {
		rec = PlanRecord{TripID: tripID}
		if err := db.Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindPlanRecord loads the plan record for a trip without creating one.
// An absent record comes back empty, so read paths stay free of write
// side effects.
func FindPlanRecord(db *gorm.DB, tripID string) (*PlanRecord, error) {
	var rec PlanRecord
	err := db.First(&rec, "trip_id = ?", tripID).Error
	if err == gorm.ErrRecordNotFound {
		return &PlanRecord{TripID: tripID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveStage writes one stage's payload and created_at on the record.
func SaveStage(db *gorm.DB, tripID string, stage Stage, payload []byte, at time.Time) error {
	updates := map[string]any{}
	switch stage {
	case StageMacroPlan:
		updates["macro_plan"] = payload
		updates["macro_plan_created_at"] = at
	case StagePOIPlan:
		updates["poi_plan"] = payload
		updates["poi_plan_created_at"] = at
	case StageItinerary:
		updates["itinerary"] = payload
		updates["itinerary_created_at"] = at
	case StageCritique:
		updates["critique"] = payload
		updates["critique_created_at"] = at
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	return db.Model(&PlanRecord{}).Where("trip_id = ?", tripID).Updates(updates).Error
}

// ClearStage nulls a stage field and everything downstream of it so the
// next orchestration re-runs from there.
func ClearStage(db *gorm.DB, tripID string, stage Stage) error {
	updates := map[string]any{}
	clear := func(s Stage) {
		switch s {
		case StageMacroPlan:
			updates["macro_plan"] = nil
			updates["macro_plan_created_at"] = nil
		case StagePOIPlan:
			updates["poi_plan"] = nil
			updates["poi_plan_created_at"] = nil
		case StageItinerary:
			updates["itinerary"] = nil
			updates["itinerary_created_at"] = nil
		case StageCritique:
			updates["critique"] = nil
			updates["critique_created_at"] = nil
		}
	}
	order := []Stage{StageMacroPlan, StagePOIPlan, StageItinerary, StageCritique}
	clearing := false
	for _, s := range order {
		if s == stage {
			clearing = true
		}
		if clearing {
			clear(s)
		}
	}
	if !clearing {
		return fmt.Errorf("unknown stage %q", stage)
	}
	return db.Model(&PlanRecord{}).Where("trip_id = ?", tripID).Updates(updates).Error
}

// WithTripLock runs fn inside a transaction holding a row lock on the
// trip's plan record, so concurrent orchestrations of the same trip
// serialize. SQLite serializes writers anyway, so the explicit lock
// clause is applied only on postgres.
func WithTripLock(db *gorm.DB, tripID string, fn func(tx *gorm.DB) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var rec PlanRecord
		err := q.First(&rec, "trip_id = ?", tripID).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == gorm.ErrRecordNotFound {
			if err := tx.Create(&PlanRecord{TripID: tripID}).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
}
