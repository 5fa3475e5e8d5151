package query

import (
	"context"

	"github.com/lexhaus/lexchat/internal/domain"
)

// Truncator bounds conversation history before prompt assembly.
type Truncator interface {
	Truncate(turns []domain.Turn) []domain.Turn
}

// Retriever returns the documents most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Document, error)
}

// Assembler builds the generation prompt.
type Assembler interface {
	Assemble(question string, docs []domain.FormattedDoc, turns []domain.Turn) (domain.Prompt, error)
}

// Generator streams answer fragments for a prompt.
type Generator interface {
	Stream(ctx context.Context, prompt domain.Prompt) (<-chan domain.GenerationEvent, error)
}
