package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/librimatch/librimatch/pkg/types"
)

// GeminiClient implements the Client interface for Google Gemini models
// through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
	config *LLMConfig
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *LLMConfig) (*GeminiClient, error) {
	if config == nil {
		config = NewLLMConfig()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash-lite"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Chat sends a chat completion request to Gemini.
func (c *GeminiClient) Chat(ctx context.Context, messages []types.Message, settings *RequestSettings) (*types.Response, error) {
	return c.generate(ctx, messages, settings, false, nil)
}

// ChatWithStructuredOutput sends a chat completion request whose output is
// constrained to valid JSON matching schema.
func (c *GeminiClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, settings *RequestSettings, schema any) (*types.Response, error) {
	return c.generate(ctx, messages, settings, true, schema)
}

// Close releases the underlying SDK client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) generate(ctx context.Context, messages []types.Message, settings *RequestSettings, structuredOutput bool, schema any) (*types.Response, error) {
	model := c.client.GenerativeModel(c.config.Model)

	temperature := c.config.Temperature
	maxTokens := c.config.MaxTokens
	if settings != nil {
		temperature = settings.Temperature
		if settings.MaxTokens > 0 {
			maxTokens = settings.MaxTokens
		}
	}
	model.SetTemperature(temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	// Gemini carries the system prompt separately from the conversation.
	system, prompt := splitMessages(messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	if structuredOutput {
		model.ResponseMIMEType = "application/json"
		if schema != nil {
			if schemaJSON, err := json.Marshal(schema); err == nil {
				prompt += "\n\nRespond with valid JSON matching this structure:\n" + string(schemaJSON)
			}
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate content failed: %v", ErrUnavailable, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, NewEmptyResponseError("no candidates returned from gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, NewRefusalError("gemini blocked the response for safety reasons")
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, NewEmptyResponseError("empty content returned from gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return nil, NewEmptyResponseError("no text parts returned from gemini")
	}

	response := &types.Response{
		Content:      sb.String(),
		FinishReason: candidate.FinishReason.String(),
		Model:        c.config.Model,
	}

	if resp.UsageMetadata != nil {
		response.TokensUsed = &types.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return response, nil
}

// splitMessages separates system instructions from the user conversation and
// flattens the remainder into a single prompt.
func splitMessages(messages []types.Message) (system string, prompt string) {
	var systemParts, promptParts []string
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, msg.Content)
		default:
			promptParts = append(promptParts, msg.Content)
		}
	}
	return strings.Join(systemParts, "\n\n"), strings.Join(promptParts, "\n\n")
}
