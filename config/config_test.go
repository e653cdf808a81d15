package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Plugin)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Gemini.Model)
	assert.Equal(t, "http://localhost:11434", cfg.AI.Ollama.BaseURL)
	assert.Equal(t, "https://routes.googleapis.com", cfg.Routes.BaseURL)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "8000", cfg.Server.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AI_PLUGIN", "ollama")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=localhost dbname=trips")
	t.Setenv("ROUTES_TIMEOUT", "2s")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "ollama", cfg.AI.Plugin)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "host=localhost dbname=trips", cfg.DB.DSN)
	assert.Equal(t, "2s", cfg.Routes.Timeout.String())
}
