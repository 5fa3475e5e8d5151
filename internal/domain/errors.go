package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or whitespace-only query. It is the
	// only pipeline error surfaced to callers before any stream is opened.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRetrievalUnavailable signals that the law index could not serve the query.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationFailed signals a model provider failure before or during streaming.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrProviderError signals an embedding or analyzer provider failure.
	ErrProviderError = errors.New("provider error")
	// ErrSessionNotFound signals a missing chat session.
	ErrSessionNotFound = errors.New("session not found")
)

// HighDemandMessage is the static, user-safe text emitted as the single
// terminal chunk when retrieval or generation fails mid-pipeline. Raw
// provider errors never reach the client.
const HighDemandMessage = "I apologize, but I am currently experiencing high demand. " +
	"Please try again in a few moments or rephrase your question to be more specific."
