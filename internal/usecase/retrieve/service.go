// Package retrieve implements self-querying retrieval: filter extraction,
// query embedding, and filtered KNN search over the law index.
package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexhaus/lexchat/internal/domain"
	"github.com/lexhaus/lexchat/internal/domain/search/filter"
)

// Service retrieves the documents most relevant to a query.
type Service struct {
	analyzer Analyzer
	embedder Embedder
	index    Index
	topK     int
	logger   *zap.Logger
}

// New creates a retrieval service. Non-positive topK falls back to the
// default.
func New(analyzer Analyzer, embedder Embedder, index Index, topK int, logger *zap.Logger) *Service {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &Service{
		analyzer: analyzer,
		embedder: embedder,
		index:    index,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve returns up to topK documents by descending relevance. A
// failing analyzer degrades to unfiltered semantic search; embedding or
// index failures make retrieval unavailable.
func (s *Service) Retrieve(ctx context.Context, query string) ([]domain.Document, error) {
	filters, err := s.analyzer.Analyze(ctx, query)
	if err != nil {
		// The structured filters are an optimization, not a correctness
		// requirement. Fall back to pure vector search.
		s.logger.Warn("Query analysis failed, searching unfiltered", zap.Error(err))
		filters = filter.Expression{}
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w: %w", err, domain.ErrRetrievalUnavailable)
	}

	docs, err := s.index.SearchKNN(ctx, emb.Embedding, filters, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search laws: %w: %w", err, domain.ErrRetrievalUnavailable)
	}
	return docs, nil
}
