// Package nlp provides the language model capability layer for librimatch.
//
// It defines a small Client interface over chat completion with optional
// schema-constrained JSON output, plus concrete backends:
//
//   - OpenAIClient: OpenAI and OpenAI-compatible services (go-openai)
//   - GeminiClient: Google Gemini via the generative-ai-go SDK
//
// Cross-cutting wrappers compose around any Client:
//
//   - RetryClient: exponential backoff on transient failures
//   - CircuitBreakerClient: trip-and-alert on sustained failures
//
// The closed Model variant type maps caller-facing model selectors
// (gemini-flash-lite, gemini-flash, gpt-nano) to backend-specific request
// shaping through a pure table; see SettingsFor.
package nlp
