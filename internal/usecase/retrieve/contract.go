package retrieve

import (
	"context"

	"github.com/lexhaus/lexchat/internal/domain"
	"github.com/lexhaus/lexchat/internal/domain/search/filter"
)

// Analyzer extracts structured filters from the query text.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (filter.Expression, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index runs KNN search over the law index.
type Index interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]domain.Document, error)
}
