package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/skanade/tripweaver/agents"
	"github.com/skanade/tripweaver/bootstrap"
	"github.com/skanade/tripweaver/config"
	logcontext "github.com/skanade/tripweaver/context"
	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
)

type PlanServer struct {
	app *bootstrap.App
}

func (s *PlanServer) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	var spec model.TripSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid trip spec: "+err.Error())
		return
	}
	if spec.TripID == "" {
		spec.TripID = uuid.NewString()
	}
	if spec.Routine == (model.DailyRoutine{}) {
		spec.Routine = model.DefaultRoutine()
	}
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := orm.CreateTrip(s.app.DB, &spec); err != nil {
		log.Errorf(ctx, "failed to store trip: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store trip")
		return
	}
	log.Infof(ctx, "created trip %s: %s, %d days", spec.TripID, spec.City, spec.Days())
	writeJSON(w, http.StatusCreated, spec)
}

func (s *PlanServer) PlanTrip(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	tripID := r.PathValue("id")

	log.Infof(ctx, "planning trip %s", tripID)
	itinerary, err := s.app.Orchestrator.Plan(ctx, tripID)
	if err != nil {
		log.Errorf(ctx, "planning failed: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, itinerary)
}

func (s *PlanServer) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	tripID := r.PathValue("id")

	itinerary, err := s.app.Orchestrator.GetItinerary(ctx, tripID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if itinerary == nil {
		writeError(w, http.StatusNotFound, "trip has no itinerary yet")
		return
	}
	writeJSON(w, http.StatusOK, itinerary)
}

func (s *PlanServer) GetCritique(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	tripID := r.PathValue("id")

	critique, err := s.app.Orchestrator.GetCritique(ctx, tripID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, critique)
}

func (s *PlanServer) InvalidateStage(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)
	tripID := r.PathValue("id")
	stage := orm.Stage(r.URL.Query().Get("stage"))

	if err := s.app.Orchestrator.Invalidate(ctx, tripID, stage); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	log.Infof(ctx, "invalidated stage %s for trip %s", stage, tripID)
	w.WriteHeader(http.StatusNoContent)
}

func requestContext(r *http.Request) context.Context {
	return logcontext.WithRequestID(r.Context(), logcontext.NewRequestID())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, agents.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, agents.ErrPOIPlanRequiresMacroPlan),
		errors.Is(err, agents.ErrItineraryRequiresPOIPlan):
		return http.StatusConflict
	case errors.Is(err, agents.ErrMacroPlanGenerationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func main() {
	// Initialize logging
	log.Init()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info(context.Background(), "\nProgram terminated externally. Exiting...")
		cancel()
	}()

	// 0. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(context.Background(), "Failed to load config: %v", err)
	}

	// 1. Run schema migrations for the sqlite dev setup
	if cfg.DB.Driver == "sqlite" || cfg.DB.Driver == "" {
		sqlDB, err := InitDB(cfg.DB.DSN)
		if err != nil {
			log.Fatalf(context.Background(), "Failed to open database: %v", err)
		}
		if err := RunMigrations(sqlDB); err != nil {
			log.Fatalf(context.Background(), "Migrations failed: %v", err)
		}
		sqlDB.Close()
	}

	// 2. Init App Components using Bootstrap
	app, err := bootstrap.Setup(context.Background(), cfg)
	if err != nil {
		log.Fatalf(context.Background(), "Setup failed: %v", err)
	}

	// 3. Start API Server
	port := cfg.Server.Port
	if port == "" {
		port = "8000"
	}

	server := &PlanServer{app: app}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/trips", server.CreateTrip)
	mux.HandleFunc("POST /v1/trips/{id}/plan", server.PlanTrip)
	mux.HandleFunc("GET /v1/trips/{id}/itinerary", server.GetItinerary)
	mux.HandleFunc("GET /v1/trips/{id}/critique", server.GetCritique)
	mux.HandleFunc("POST /v1/trips/{id}/invalidate", server.InvalidateStage)

	// Simple CORS middleware
	corsHandler := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Allow all origins for now (dev mode)
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h.ServeHTTP(w, r)
		})
	}

	// Use h2c for HTTP/2 without TLS (common for dev and internal services)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: h2c.NewHandler(corsHandler(mux), &http2.Server{}),
	}

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down server...")
		srv.Shutdown(context.Background())
	}()

	log.Infof(context.Background(), "Starting server on port %s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf(context.Background(), "Server failed: %v", err)
	}
}
