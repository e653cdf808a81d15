// Package bootstrap wires configuration into the pipeline: database,
// model plugin, providers and agents.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skanade/tripweaver/agents"
	"github.com/skanade/tripweaver/bootstrap/oai"
	"github.com/skanade/tripweaver/config"
	"github.com/skanade/tripweaver/providers/holidays"
	"github.com/skanade/tripweaver/providers/llm"
	"github.com/skanade/tripweaver/providers/poi"
	"github.com/skanade/tripweaver/providers/travel"
)

// App holds the initialized components of the application.
type App struct {
	Orchestrator *agents.Orchestrator
	DB           *gorm.DB
	Genkit       *genkit.Genkit
	Model        ai.Model
}

// Setup initializes the application components based on the configuration.
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	gk, model, err := setupModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	llmClient := llm.NewGenkitClient(gk, model)

	provider, err := setupPOIProvider(cfg, db)
	if err != nil {
		return nil, err
	}

	routes := travel.NewRoutesClient(cfg.Routes.APIKey, cfg.Routes.BaseURL, cfg.Routes.Timeout)
	routes.CacheDB = db

	orchestrator := agents.NewOrchestrator(
		db,
		agents.NewMacroPlanner(llmClient, holidays.NewClient()),
		agents.NewPOIPlanner(provider),
		agents.NewRouteOptimizer(routes),
		agents.NewCritic(),
	)

	return &App{
		Orchestrator: orchestrator,
		DB:           db,
		Genkit:       gk,
		Model:        model,
	}, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DB.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DB.DSN)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DB.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func setupModel(ctx context.Context, cfg *config.Config) (*genkit.Genkit, ai.Model, error) {
	switch cfg.AI.Plugin {
	case "ollama":
		log.Printf("Using Ollama Plugin (Model: %s)...", cfg.AI.Ollama.Model)
		ollamaPlugin := &ollama.Ollama{
			ServerAddress: cfg.AI.Ollama.BaseURL,
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		model := ollamaPlugin.DefineModel(gk, ollama.ModelDefinition{
			Name: cfg.AI.Ollama.Model,
			Type: "chat",
		}, &ai.ModelOptions{
			Supports: &ai.ModelSupports{
				Multiturn:  true,
				SystemRole: true,
				Media:      false,
			},
		})
		return gk, model, nil

	case "oai":
		log.Printf("Using OpenAI-compatible Plugin (Model: %s)...", cfg.AI.OAI.Model)
		if cfg.AI.OAI.APIKey == "" {
			return nil, nil, fmt.Errorf("OAI_API_KEY must be set for the oai plugin")
		}
		oaiPlugin := &oai.OAI{
			APIKey:  cfg.AI.OAI.APIKey,
			BaseURL: cfg.AI.OAI.BaseURL,
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(oaiPlugin))
		model := oaiPlugin.DefineModelWithDefaults(cfg.AI.OAI.Model)
		return gk, model, nil

	default:
		log.Println("Using Gemini Plugin...")
		if cfg.AI.Gemini.APIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY must be set (or set AI_PLUGIN=ollama)")
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: cfg.AI.Gemini.APIKey,
		}))
		model := googlegenai.GoogleAIModel(gk, cfg.AI.Gemini.Model)
		return gk, model, nil
	}
}

// setupPOIProvider builds the two-tier provider. Without a Maps key the
// pipeline runs on the local store alone.
func setupPOIProvider(cfg *config.Config, db *gorm.DB) (poi.Provider, error) {
	local := poi.NewLocalProvider(db)
	if cfg.Maps.APIKey == "" {
		log.Println("MAPS_API_KEY not set; POI search uses the local store only")
		return poi.NewCompositeProvider(local, nil), nil
	}
	places, err := poi.NewPlacesProvider(cfg.Maps.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize places provider: %w", err)
	}
	places.CacheDB = db
	return poi.NewCompositeProvider(local, places), nil
}
