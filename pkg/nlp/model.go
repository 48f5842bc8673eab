package nlp

import "fmt"

// Model identifies one of the configured LLM backends by its caller-facing
// selector. The set is closed: callers pick a variant, never a raw
// provider-side model string.
type Model string

const (
	// ModelGeminiFlashLite is the default, cheapest backend.
	ModelGeminiFlashLite Model = "gemini-flash-lite"
	// ModelGeminiFlash is the stronger Gemini backend.
	ModelGeminiFlash Model = "gemini-flash"
	// ModelGPTNano is the OpenAI nano backend.
	ModelGPTNano Model = "gpt-nano"
)

// Provider identifies the backend implementation used for a model.
type Provider string

const (
	// ProviderGemini routes through the Google Gemini client.
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI routes through the OpenAI client.
	ProviderOpenAI Provider = "openai"
)

// RequestSettings are per-request generation controls. A nil pointer field on
// the caller side means "use the configured default".
type RequestSettings struct {
	Temperature float32
	MaxTokens   int
}

// modelSpec captures backend-specific request shaping for one model variant.
type modelSpec struct {
	provider Provider

	// pinnedTemperature, when non-nil, overrides any caller-supplied
	// temperature. The OpenAI nano model only accepts a temperature of 1.
	pinnedTemperature *float32
}

var pinnedOne float32 = 1

var modelSpecs = map[Model]modelSpec{
	ModelGeminiFlashLite: {provider: ProviderGemini},
	ModelGeminiFlash:     {provider: ProviderGemini},
	ModelGPTNano:         {provider: ProviderOpenAI, pinnedTemperature: &pinnedOne},
}

// Models returns the closed set of supported model selectors.
func Models() []Model {
	return []Model{ModelGeminiFlashLite, ModelGeminiFlash, ModelGPTNano}
}

// ParseModel converts a caller-supplied selector string into a Model.
func ParseModel(s string) (Model, error) {
	m := Model(s)
	if _, ok := modelSpecs[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidModel, s)
	}
	return m, nil
}

// Provider returns the backend implementation for the model.
func (m Model) Provider() Provider {
	return modelSpecs[m].provider
}

// SettingsFor maps a caller's model and temperature choice onto the settings
// the backend accepts. Table-driven: the only per-backend rule today is the
// pinned temperature on gpt-nano, which ignores the caller's request.
func SettingsFor(m Model, temperature *float32, defaults RequestSettings) RequestSettings {
	settings := defaults
	if temperature != nil {
		settings.Temperature = *temperature
	}
	if spec, ok := modelSpecs[m]; ok && spec.pinnedTemperature != nil {
		settings.Temperature = *spec.pinnedTemperature
	}
	return settings
}
