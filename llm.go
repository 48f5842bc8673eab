package librimatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"

	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/prompts"
	"github.com/librimatch/librimatch/pkg/types"
)

// LanguageConfig holds defaults for language model requests.
type LanguageConfig struct {
	// DefaultModel is used when a request names no model.
	DefaultModel nlp.Model

	// Temperature is the default sampling temperature.
	Temperature float32

	// MaxTokens is the default generation cap.
	MaxTokens int
}

// languageService implements LanguageService over a set of model backends.
type languageService struct {
	clients map[nlp.Model]nlp.Client
	config  LanguageConfig
	logger  *slog.Logger
}

// NewLanguageService creates a LanguageService routing requests across the
// given backends. The default model must have a backend in clients.
func NewLanguageService(clients map[nlp.Model]nlp.Client, config LanguageConfig, logger *slog.Logger) (LanguageService, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("at least one language model backend is required")
	}
	if config.DefaultModel == "" {
		config.DefaultModel = nlp.ModelGeminiFlashLite
	}
	if _, ok := clients[config.DefaultModel]; !ok {
		return nil, fmt.Errorf("no backend configured for default model %q", config.DefaultModel)
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = nlp.DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &languageService{
		clients: clients,
		config:  config,
		logger:  logger,
	}, nil
}

// resolve picks the backend and request settings for the given options.
func (s *languageService) resolve(opts *RequestOptions) (nlp.Client, nlp.Model, nlp.RequestSettings, error) {
	model := s.config.DefaultModel
	var temperature *float32
	if opts != nil {
		if opts.Model != nil {
			model = *opts.Model
		}
		temperature = opts.Temperature
	}

	client, ok := s.clients[model]
	if !ok {
		return nil, "", nlp.RequestSettings{}, fmt.Errorf("%w: %q", nlp.ErrInvalidModel, model)
	}

	settings := nlp.SettingsFor(model, temperature, nlp.RequestSettings{
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})

	return client, model, settings, nil
}

// ExtractHypotheses implements LanguageService.
func (s *languageService) ExtractHypotheses(ctx context.Context, query string, opts *RequestOptions) ([]types.Hypothesis, error) {
	client, model, settings, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	messages := prompts.ExtractHypothesesMessages(query)
	resp, err := client.ChatWithStructuredOutput(ctx, messages, &settings, prompts.HypothesisResponse{})
	if err != nil {
		return nil, wrapLanguageError("hypothesis extraction", err)
	}

	var parsed prompts.HypothesisResponse
	if err := unmarshalRepaired(resp.Content, &parsed); err != nil {
		return nil, fmt.Errorf("%w: hypothesis extraction returned malformed JSON: %v", nlp.ErrUnavailable, err)
	}

	s.logger.Debug("hypothesis extraction complete", "model", model, "hypotheses", len(parsed.Hypotheses))
	return parsed.Hypotheses, nil
}

// RankCandidates implements LanguageService.
func (s *languageService) RankCandidates(ctx context.Context, request types.RankRequest, opts *RequestOptions) ([]types.RankedMatch, error) {
	client, model, settings, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	messages, err := prompts.RankCandidatesMessages(request)
	if err != nil {
		return nil, err
	}

	resp, err := client.ChatWithStructuredOutput(ctx, messages, &settings, prompts.RankedMatchResponse{})
	if err != nil {
		return nil, wrapLanguageError("candidate ranking", err)
	}

	var parsed prompts.RankedMatchResponse
	if err := unmarshalRepaired(resp.Content, &parsed); err != nil {
		return nil, fmt.Errorf("%w: candidate ranking returned malformed JSON: %v", nlp.ErrUnavailable, err)
	}

	s.logger.Debug("candidate ranking complete", "model", model, "matches", len(parsed.Matches))
	return parsed.Matches, nil
}

// unmarshalRepaired repairs common LLM JSON defects before unmarshaling.
func unmarshalRepaired(content string, v any) error {
	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return fmt.Errorf("failed to repair JSON: %w", err)
	}
	return json.Unmarshal([]byte(repaired), v)
}

// wrapLanguageError classifies backend failures as ErrLLMUnavailable unless
// already classified.
func wrapLanguageError(operation string, err error) error {
	if errors.Is(err, nlp.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s failed: %v", nlp.ErrUnavailable, operation, err)
}
