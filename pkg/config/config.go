package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// OpenLibrary configuration
	OpenLibrary OpenLibraryConfig `mapstructure:"openlibrary"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Match configuration
	Match MatchConfig `mapstructure:"match"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// OpenLibraryConfig holds catalog client configuration
type OpenLibraryConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LLMConfig holds language model configuration
type LLMConfig struct {
	// DefaultModel is the selector used when a request names no model
	DefaultModel string `mapstructure:"default_model"`

	// Temperature is the default sampling temperature
	Temperature float32 `mapstructure:"temperature"`

	// MaxTokens is the default generation cap
	MaxTokens int `mapstructure:"max_tokens"`

	// Models maps caller-facing selectors to backend configurations
	Models map[string]ModelConfig `mapstructure:"models"`
}

// ModelConfig holds configuration for a single backend model
type ModelConfig struct {
	Provider string `mapstructure:"provider"` // gemini, openai
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// MatchConfig holds matching pipeline configuration
type MatchConfig struct {
	MaxMatches           int `mapstructure:"max_matches"`
	SearchLimit          int `mapstructure:"search_limit"`
	MaxConcurrentLookups int `mapstructure:"max_concurrent_lookups"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// OpenLibrary defaults
	viper.SetDefault("openlibrary.base_url", "https://openlibrary.org")
	viper.SetDefault("openlibrary.timeout_seconds", 30)

	// LLM defaults
	viper.SetDefault("llm.default_model", "gemini-flash-lite")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 4096)

	viper.SetDefault("llm.models.gemini-flash-lite.provider", "gemini")
	viper.SetDefault("llm.models.gemini-flash-lite.model", "gemini-2.0-flash-lite")

	viper.SetDefault("llm.models.gemini-flash.provider", "gemini")
	viper.SetDefault("llm.models.gemini-flash.model", "gemini-2.0-flash")

	viper.SetDefault("llm.models.gpt-nano.provider", "openai")
	viper.SetDefault("llm.models.gpt-nano.model", "gpt-4.1-nano")

	// Match defaults
	viper.SetDefault("match.max_matches", 5)
	viper.SetDefault("match.search_limit", 5)
	viper.SetDefault("match.max_concurrent_lookups", 5)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 60)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Initialize Models map if nil
	if config.LLM.Models == nil {
		config.LLM.Models = make(map[string]ModelConfig)
	}

	// Helper to get or create model config
	getModel := func(name string) ModelConfig {
		if c, ok := config.LLM.Models[name]; ok {
			return c
		}
		return ModelConfig{}
	}

	// API keys apply to every model of the matching provider
	geminiKey := os.Getenv("GEMINI_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	for name := range config.LLM.Models {
		model := getModel(name)
		if geminiKey != "" && model.Provider == "gemini" {
			model.APIKey = geminiKey
		}
		if openaiKey != "" && model.Provider == "openai" {
			model.APIKey = openaiKey
		}
		config.LLM.Models[name] = model
	}

	// Catalog settings
	if baseURL := os.Getenv("OPENLIBRARY_BASE_URL"); baseURL != "" {
		config.OpenLibrary.BaseURL = baseURL
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
}
