package domain

import "context"

// GenerationEvent is one fragment of streamed model output, or a terminal
// error. After an event with a non-nil Err the channel is closed; fragments
// already delivered are never retracted.
type GenerationEvent struct {
	Text string
	Err  error
}

// Generator produces model output for an assembled prompt.
//
// Stream returns an ordered, finite, non-restartable sequence of text
// fragments. Concatenating every fragment equals the Invoke output for the
// same request. The channel is closed when the stream ends, errors, or the
// context is canceled.
type Generator interface {
	Stream(ctx context.Context, prompt Prompt) (<-chan GenerationEvent, error)
	Invoke(ctx context.Context, prompt Prompt) (string, error)
}
