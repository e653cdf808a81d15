package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration
type Config struct {
	AI     AIConfig     `yaml:"ai"`
	Maps   MapsConfig   `yaml:"maps"`
	Routes RoutesConfig `yaml:"routes"`
	DB     DBConfig     `yaml:"db"`
	Server ServerConfig `yaml:"server"`
}

type AIConfig struct {
	Plugin string       `yaml:"plugin" env:"AI_PLUGIN" env-default:"gemini"`
	Gemini GeminiConfig `yaml:"gemini"`
	Ollama OllamaConfig `yaml:"ollama"`
	OAI    OAIConfig    `yaml:"oai"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type OllamaConfig struct {
	Model   string `yaml:"model" env:"OLLAMA_MODEL" env-default:"qwen3:4b"`
	BaseURL string `yaml:"base_url" env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
}

// OAIConfig targets any OpenAI-compatible endpoint.
type OAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OAI_BASE_URL"`
	Model   string `yaml:"model" env:"OAI_MODEL" env-default:"gpt-4o-mini"`
}

type MapsConfig struct {
	APIKey string `yaml:"api_key" env:"MAPS_API_KEY"`
}

type RoutesConfig struct {
	APIKey  string        `yaml:"api_key" env:"ROUTES_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"ROUTES_BASE_URL" env-default:"https://routes.googleapis.com"`
	Timeout time.Duration `yaml:"timeout" env:"ROUTES_TIMEOUT" env-default:"5s"`
}

type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env:"DB_DSN" env-default:"tripweaver.db"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	var cfg Config

	err := cleanenv.ReadConfig("config.yaml", &cfg)
	if err != nil {
		// If file doesn't exist, just read env vars
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	return &cfg, nil
}
