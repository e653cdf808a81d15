package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	appctx "github.com/skanade/tripweaver/context"
	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
)

// Orchestrator sequences the pipeline stages with per-stage persistence.
// Each stage runs outside any lock and commits under the trip's advisory
// lock with a re-check, so a concurrent orchestration that got there
// first wins and its output is reused.
type Orchestrator struct {
	DB        *gorm.DB
	Macro     *MacroPlanner
	POI       *POIPlanner
	Optimizer *RouteOptimizer
	Critic    *Critic
}

// NewOrchestrator wires the pipeline over one database handle.
func NewOrchestrator(db *gorm.DB, macro *MacroPlanner, poi *POIPlanner, opt *RouteOptimizer, critic *Critic) *Orchestrator {
	return &Orchestrator{DB: db, Macro: macro, POI: poi, Optimizer: opt, Critic: critic}
}

// Plan runs every missing stage in order and returns the itinerary.
// It is idempotent: stages that already committed are reused as-is.
func (o *Orchestrator) Plan(ctx context.Context, tripID string) (*model.Itinerary, error) {
	spec, err := o.loadSpec(tripID)
	if err != nil {
		return nil, err
	}
	ctx = appctx.WithTripID(ctx, tripID)

	macro, err := o.ensureMacroPlan(ctx, spec)
	if err != nil {
		return nil, err
	}
	pois, err := o.ensurePOIPlan(ctx, spec, macro)
	if err != nil {
		return nil, err
	}
	itinerary, err := o.ensureItinerary(ctx, spec, macro, pois)
	if err != nil {
		return nil, err
	}
	if _, err := o.ensureCritique(ctx, spec, itinerary); err != nil {
		return nil, err
	}
	return itinerary, nil
}

// GetItinerary returns the persisted itinerary, or nil if the pipeline
// has not produced one yet.
func (o *Orchestrator) GetItinerary(ctx context.Context, tripID string) (*model.Itinerary, error) {
	if _, err := o.loadSpec(tripID); err != nil {
		return nil, err
	}
	rec, err := orm.FindPlanRecord(o.DB, tripID)
	if err != nil {
		return nil, err
	}
	if rec.Itinerary == nil {
		return nil, nil
	}
	var it model.Itinerary
	if err := json.Unmarshal(rec.Itinerary, &it); err != nil {
		return nil, fmt.Errorf("decode itinerary: %w", err)
	}
	return &it, nil
}

// GetCritique returns the persisted critique, or an empty list when the
// trip has not been planned yet.
func (o *Orchestrator) GetCritique(ctx context.Context, tripID string) ([]model.CritiqueIssue, error) {
	if _, err := o.loadSpec(tripID); err != nil {
		return nil, err
	}
	rec, err := orm.FindPlanRecord(o.DB, tripID)
	if err != nil {
		return nil, err
	}
	if rec.Critique == nil {
		return []model.CritiqueIssue{}, nil
	}
	var issues []model.CritiqueIssue
	if err := json.Unmarshal(rec.Critique, &issues); err != nil {
		return nil, fmt.Errorf("decode critique: %w", err)
	}
	if issues == nil {
		issues = []model.CritiqueIssue{}
	}
	return issues, nil
}

// Invalidate clears a stage and everything downstream so the next Plan
// re-runs the pipeline from that stage.
func (o *Orchestrator) Invalidate(ctx context.Context, tripID string, stage orm.Stage) error {
	if _, err := o.loadSpec(tripID); err != nil {
		return err
	}
	return orm.WithTripLock(o.DB, tripID, func(tx *gorm.DB) error {
		return orm.ClearStage(tx, tripID, stage)
	})
}

// PlanPOIs runs only the POI stage; it requires a committed macro plan.
// Exists for stage-level invocation; Plan composes the same steps.
func (o *Orchestrator) PlanPOIs(ctx context.Context, tripID string) (*model.POIPlan, error) {
	spec, err := o.loadSpec(tripID)
	if err != nil {
		return nil, err
	}
	ctx = appctx.WithTripID(ctx, tripID)

	rec, err := orm.FindPlanRecord(o.DB, tripID)
	if err != nil {
		return nil, err
	}
	if rec.MacroPlan == nil {
		return nil, fmt.Errorf("%w: trip %s", ErrPOIPlanRequiresMacroPlan, tripID)
	}
	var macro model.MacroPlan
	if err := json.Unmarshal(rec.MacroPlan, &macro); err != nil {
		return nil, fmt.Errorf("decode macro plan: %w", err)
	}
	return o.ensurePOIPlan(ctx, spec, &macro)
}

// OptimizeRoute runs only the optimizer stage; it requires a committed
// POI plan (and therefore a macro plan).
func (o *Orchestrator) OptimizeRoute(ctx context.Context, tripID string) (*model.Itinerary, error) {
	spec, err := o.loadSpec(tripID)
	if err != nil {
		return nil, err
	}
	ctx = appctx.WithTripID(ctx, tripID)

	rec, err := orm.FindPlanRecord(o.DB, tripID)
	if err != nil {
		return nil, err
	}
	if rec.MacroPlan == nil || rec.POIPlan == nil {
		return nil, fmt.Errorf("%w: trip %s", ErrItineraryRequiresPOIPlan, tripID)
	}
	var macro model.MacroPlan
	if err := json.Unmarshal(rec.MacroPlan, &macro); err != nil {
		return nil, fmt.Errorf("decode macro plan: %w", err)
	}
	var pois model.POIPlan
	if err := json.Unmarshal(rec.POIPlan, &pois); err != nil {
		return nil, fmt.Errorf("decode poi plan: %w", err)
	}
	return o.ensureItinerary(ctx, spec, &macro, &pois)
}

func (o *Orchestrator) loadSpec(tripID string) (*model.TripSpec, error) {
	spec, err := orm.GetTripSpec(o.DB, tripID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

func (o *Orchestrator) ensureMacroPlan(ctx context.Context, spec *model.TripSpec) (*model.MacroPlan, error) {
	rec, err := orm.FindPlanRecord(o.DB, spec.TripID)
	if err != nil {
		return nil, err
	}
	if rec.MacroPlan != nil {
		var plan model.MacroPlan
		if err := json.Unmarshal(rec.MacroPlan, &plan); err != nil {
			return nil, fmt.Errorf("decode macro plan: %w", err)
		}
		return &plan, nil
	}

	log.Infof(ctx, "generating macro plan for %s (%d days)", spec.City, spec.Days())
	plan, err := o.Macro.Generate(ctx, spec)
	if err != nil {
		return nil, err
	}
	if err := o.commitStage(spec.TripID, orm.StageMacroPlan, plan, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (o *Orchestrator) ensurePOIPlan(ctx context.Context, spec *model.TripSpec, macro *model.MacroPlan) (*model.POIPlan, error) {
	rec, err := orm.FindPlanRecord(o.DB, spec.TripID)
	if err != nil {
		return nil, err
	}
	if rec.POIPlan != nil {
		var plan model.POIPlan
		if err := json.Unmarshal(rec.POIPlan, &plan); err != nil {
			return nil, fmt.Errorf("decode poi plan: %w", err)
		}
		return &plan, nil
	}

	log.Infof(ctx, "resolving poi candidates for %s", spec.City)
	plan, err := o.POI.Plan(ctx, spec, macro)
	if err != nil {
		return nil, err
	}
	if err := o.commitStage(spec.TripID, orm.StagePOIPlan, plan, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (o *Orchestrator) ensureItinerary(ctx context.Context, spec *model.TripSpec, macro *model.MacroPlan, pois *model.POIPlan) (*model.Itinerary, error) {
	rec, err := orm.FindPlanRecord(o.DB, spec.TripID)
	if err != nil {
		return nil, err
	}
	if rec.Itinerary != nil {
		var it model.Itinerary
		if err := json.Unmarshal(rec.Itinerary, &it); err != nil {
			return nil, fmt.Errorf("decode itinerary: %w", err)
		}
		return &it, nil
	}

	log.Infof(ctx, "optimizing itinerary for %s", spec.City)
	it, err := o.Optimizer.Optimize(ctx, spec, macro, pois)
	if err != nil {
		return nil, err
	}
	if err := o.commitStage(spec.TripID, orm.StageItinerary, it, &it); err != nil {
		return nil, err
	}
	return it, nil
}

func (o *Orchestrator) ensureCritique(ctx context.Context, spec *model.TripSpec, it *model.Itinerary) ([]model.CritiqueIssue, error) {
	rec, err := orm.FindPlanRecord(o.DB, spec.TripID)
	if err != nil {
		return nil, err
	}
	if rec.Critique != nil {
		var issues []model.CritiqueIssue
		if err := json.Unmarshal(rec.Critique, &issues); err != nil {
			return nil, fmt.Errorf("decode critique: %w", err)
		}
		return issues, nil
	}

	issues := o.Critic.Critique(spec, it)
	if issues == nil {
		issues = []model.CritiqueIssue{}
	}
	if err := o.commitStage(spec.TripID, orm.StageCritique, issues, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// commitStage persists a stage output under the trip lock, unless a
// concurrent run committed first, in which case the stored value is
// decoded into out and wins.
func (o *Orchestrator) commitStage(tripID string, stage orm.Stage, value any, out any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", stage, err)
	}
	return orm.WithTripLock(o.DB, tripID, func(tx *gorm.DB) error {
		rec, err := orm.GetPlanRecord(tx, tripID)
		if err != nil {
			return err
		}
		if stored := stagePayload(rec, stage); stored != nil {
			return json.Unmarshal(stored, out)
		}
		return orm.SaveStage(tx, tripID, stage, payload, time.Now().UTC())
	})
}

func stagePayload(rec *orm.PlanRecord, stage orm.Stage) []byte {
	switch stage {
	case orm.StageMacroPlan:
		return rec.MacroPlan
	case orm.StagePOIPlan:
		return rec.POIPlan
	case orm.StageItinerary:
		return rec.Itinerary
	case orm.StageCritique:
		return rec.Critique
	}
	return nil
}
