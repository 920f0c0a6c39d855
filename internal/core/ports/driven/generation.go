package driven

import "context"

// GenerationService produces a grounded answer from a question and the
// assembled retrieval context. Treated as a fallible network call:
// adapters retry transient failures (rate limits, timeouts) with bounded
// backoff and surface domain.ErrGeneration once retries are exhausted.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4 family)
type GenerationService interface {
	// Generate answers the request's question from its context.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResponse, error)

	// ModelName identifies the generation model.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerationRequest is the request contract for the generation boundary.
type GenerationRequest struct {
	// Question is the user's query.
	Question string

	// Context is the assembled retrieval context. When retrieval found
	// nothing it carries an explicit no-context marker instead of
	// being empty.
	Context string

	// System carries optional system instructions.
	System string

	// MaxTokens bounds the generated answer. Zero means the adapter
	// default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// GenerationResponse is the response contract for the generation boundary.
type GenerationResponse struct {
	// Answer is the generated answer text.
	Answer string
}
