package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/librimatch/librimatch/pkg/config"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfigFile(t *testing.T, content map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(content)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "librimatch.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://openlibrary.org", cfg.OpenLibrary.BaseURL)
	assert.Equal(t, "gemini-flash-lite", cfg.LLM.DefaultModel)
	assert.InDelta(t, 0.2, float64(cfg.LLM.Temperature), 0.001)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.Match.MaxMatches)
	assert.Equal(t, 5, cfg.Match.SearchLimit)
	assert.Equal(t, 5, cfg.Match.MaxConcurrentLookups)

	// Every caller-facing model selector maps to a provider-side model.
	require.Contains(t, cfg.LLM.Models, "gemini-flash-lite")
	assert.Equal(t, "gemini", cfg.LLM.Models["gemini-flash-lite"].Provider)
	assert.Equal(t, "gemini-2.0-flash-lite", cfg.LLM.Models["gemini-flash-lite"].Model)
	require.Contains(t, cfg.LLM.Models, "gpt-nano")
	assert.Equal(t, "openai", cfg.LLM.Models["gpt-nano"].Provider)
	assert.Equal(t, "gpt-4.1-nano", cfg.LLM.Models["gpt-nano"].Model)
}

func TestLoadFromFile(t *testing.T) {
	resetViper(t)

	writeConfigFile(t, map[string]any{
		"log": map[string]any{
			"level":  "debug",
			"format": "json",
		},
		"server": map[string]any{
			"port": 9090,
		},
		"openlibrary": map[string]any{
			"base_url": "https://openlibrary.example.test",
		},
		"llm": map[string]any{
			"default_model": "gemini-flash",
			"temperature":   0.5,
		},
		"match": map[string]any{
			"max_matches": 3,
		},
	})

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://openlibrary.example.test", cfg.OpenLibrary.BaseURL)
	assert.Equal(t, "gemini-flash", cfg.LLM.DefaultModel)
	assert.InDelta(t, 0.5, float64(cfg.LLM.Temperature), 0.001)
	assert.Equal(t, 3, cfg.Match.MaxMatches)

	// Unspecified values keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 5, cfg.Match.SearchLimit)
}

func TestEnvOverrides(t *testing.T) {
	resetViper(t)

	t.Setenv("GEMINI_API_KEY", "gemini-test-key")
	t.Setenv("OPENAI_API_KEY", "openai-test-key")
	t.Setenv("OPENLIBRARY_BASE_URL", "https://mirror.example.test")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "3000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-test-key", cfg.LLM.Models["gemini-flash-lite"].APIKey)
	assert.Equal(t, "gemini-test-key", cfg.LLM.Models["gemini-flash"].APIKey)
	assert.Equal(t, "openai-test-key", cfg.LLM.Models["gpt-nano"].APIKey)
	assert.Equal(t, "https://mirror.example.test", cfg.OpenLibrary.BaseURL)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
}
