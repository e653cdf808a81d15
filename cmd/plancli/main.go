// plancli runs the planning pipeline end-to-end for one ad-hoc trip and
// prints the resulting itinerary and critique as JSON. Useful for
// exercising prompts and providers without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skanade/tripweaver/agents"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
	"github.com/skanade/tripweaver/providers/holidays"
	"github.com/skanade/tripweaver/providers/llm"
	"github.com/skanade/tripweaver/providers/poi"
	"github.com/skanade/tripweaver/providers/travel"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	city := flag.String("city", "Paris", "destination city")
	country := flag.String("country", "FR", "ISO country code for holiday lookup")
	start := flag.String("start", "", "start date YYYY-MM-DD (default: two weeks out)")
	days := flag.Int("days", 3, "trip length in days")
	pace := flag.String("pace", "medium", "pace: slow, medium or fast")
	budget := flag.String("budget", "medium", "budget: low, medium or high")
	interests := flag.String("interests", "gastronomy,history", "comma-separated interests")
	flag.Parse()

	startDate := model.Date{Time: time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour)}
	if *start != "" {
		parsed, err := model.ParseDate(*start)
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		startDate = parsed
	}

	spec := &model.TripSpec{
		TripID:      uuid.NewString(),
		City:        *city,
		CountryCode: *country,
		StartDate:   startDate,
		EndDate:     startDate.AddDays(*days - 1),
		Travelers:   2,
		Pace:        model.Pace(*pace),
		Budget:      model.Budget(*budget),
		Interests:   splitComma(*interests),
		Routine:     model.DefaultRoutine(),
	}
	if err := spec.Validate(); err != nil {
		log.Fatalf("Invalid trip spec: %v", err)
	}

	// 1. Setup Gemini client
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Fatal("Error: GEMINI_API_KEY must be set")
	}
	geminiClient, err := llm.NewGeminiClient(geminiAPIKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	// 2. Setup storage
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&orm.POI{}, &orm.Trip{}, &orm.PlanRecord{}, &orm.APICache{}); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	if err := orm.CreateTrip(db, spec); err != nil {
		log.Fatalf("Failed to store trip: %v", err)
	}

	// 3. Wire the pipeline
	provider := poi.NewCompositeProvider(poi.NewLocalProvider(db), placesProvider(db))
	routes := travel.NewRoutesClient(os.Getenv("ROUTES_API_KEY"), "", 0)
	routes.CacheDB = db

	orchestrator := agents.NewOrchestrator(
		db,
		agents.NewMacroPlanner(geminiClient, holidays.NewClient()),
		agents.NewPOIPlanner(provider),
		agents.NewRouteOptimizer(routes),
		agents.NewCritic(),
	)

	// 4. Run it
	ctx := context.Background()
	log.Printf("Planning %d days in %s (%s)...", spec.Days(), spec.City, spec.TripID)
	itinerary, err := orchestrator.Plan(ctx, spec.TripID)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}
	critique, err := orchestrator.GetCritique(ctx, spec.TripID)
	if err != nil {
		log.Fatalf("Failed to load critique: %v", err)
	}

	printJSON("ITINERARY", itinerary)
	printJSON("CRITIQUE", critique)
}

func placesProvider(db *gorm.DB) poi.Provider {
	apiKey := os.Getenv("MAPS_API_KEY")
	if apiKey == "" {
		log.Println("MAPS_API_KEY not set; using the local POI store only")
		return nil
	}
	places, err := poi.NewPlacesProvider(apiKey)
	if err != nil {
		log.Printf("Failed to create places provider, using local store only: %v", err)
		return nil
	}
	places.CacheDB = db
	return places
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(label string, v any) {
	log.Printf("\n=== %s ===", label)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal %s: %v", label, err)
		return
	}
	fmt.Println(string(data))
}
