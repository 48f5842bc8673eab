package librimatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	root "github.com/librimatch/librimatch"
	"github.com/librimatch/librimatch/pkg/alert"
	"github.com/librimatch/librimatch/pkg/config"
	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/openlibrary"
)

// buildMatcher wires the full pipeline from configuration: catalog client,
// one language model backend per configured model, retry and circuit breaker
// wrappers, and the matching client itself. The returned closer releases the
// backends.
func buildMatcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (root.Matcher, func(), error) {
	catalog := openlibrary.NewClient(
		cfg.OpenLibrary.BaseURL,
		time.Duration(cfg.OpenLibrary.TimeoutSeconds)*time.Second,
	)

	var alerter alert.Alerter
	if cfg.Alert.Enabled {
		alerter = alert.NewEmailAlerter(cfg.Alert)
	} else {
		alerter = &alert.NoOpAlerter{}
	}

	clients := make(map[nlp.Model]nlp.Client, len(cfg.LLM.Models))
	closeAll := func() {
		for _, client := range clients {
			_ = client.Close()
		}
	}

	for name, modelCfg := range cfg.LLM.Models {
		model, err := nlp.ParseModel(name)
		if err != nil {
			logger.Warn("skipping unknown model selector", "model", name)
			continue
		}
		if modelCfg.APIKey == "" {
			logger.Warn("skipping model without API key", "model", name)
			continue
		}

		llmConfig := nlp.NewLLMConfig().
			WithAPIKey(modelCfg.APIKey).
			WithModel(modelCfg.Model).
			WithBaseURL(modelCfg.BaseURL).
			WithTemperature(cfg.LLM.Temperature).
			WithMaxTokens(cfg.LLM.MaxTokens)

		var backend nlp.Client
		switch modelCfg.Provider {
		case "gemini":
			backend, err = nlp.NewGeminiClient(ctx, llmConfig)
		case "openai":
			backend, err = nlp.NewOpenAIClient(llmConfig)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unsupported provider %q for model %q", modelCfg.Provider, name)
		}
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create %q backend: %w", name, err)
		}

		wrapped := nlp.Client(nlp.NewRetryClient(backend, nil))
		if cfg.CircuitBreaker.Enabled {
			wrapped = nlp.NewCircuitBreakerClient(wrapped, cfg.CircuitBreaker, alerter, string(model))
		}
		clients[model] = wrapped
	}

	if len(clients) == 0 {
		return nil, nil, fmt.Errorf("no language model backends configured; set GEMINI_API_KEY or OPENAI_API_KEY")
	}

	defaultModel, err := nlp.ParseModel(cfg.LLM.DefaultModel)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("invalid default model: %w", err)
	}
	if _, ok := clients[defaultModel]; !ok {
		// Fall back to any configured backend.
		for model := range clients {
			logger.Warn("default model has no backend, falling back", "default", defaultModel, "fallback", model)
			defaultModel = model
			break
		}
	}

	language, err := root.NewLanguageService(clients, root.LanguageConfig{
		DefaultModel: defaultModel,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	matcher := root.NewClient(language, catalog, &root.Config{
		MaxMatches:           cfg.Match.MaxMatches,
		SearchLimit:          cfg.Match.SearchLimit,
		MaxConcurrentLookups: cfg.Match.MaxConcurrentLookups,
	}, logger)

	return matcher, closeAll, nil
}
