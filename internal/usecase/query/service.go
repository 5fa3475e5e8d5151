// Package query orchestrates the question answering pipeline: history
// truncation, retrieval, prompt assembly, and streamed generation.
package query

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexhaus/lexchat/internal/domain"
	"github.com/lexhaus/lexchat/internal/metrics"
)

// Service runs the law question answering pipeline.
type Service struct {
	history   Truncator
	retriever Retriever
	assembler Assembler
	generator Generator
	logger    *zap.Logger
}

// New creates a query pipeline service.
func New(history Truncator, retriever Retriever, assembler Assembler, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		history:   history,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		logger:    logger,
	}
}

// QueryLaws answers a question as an ordered stream of result chunks. An
// empty or whitespace-only query fails synchronously before any I/O.
// Downstream failures degrade to exactly one terminal chunk carrying the
// static high-demand message; cancellation closes the stream silently.
func (s *Service) QueryLaws(ctx context.Context, query string, history []domain.Turn) (<-chan domain.ResultChunk, error) {
	if strings.TrimSpace(query) == "" {
		metrics.QueriesTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidQuery
	}

	out := make(chan domain.ResultChunk)
	go s.run(ctx, query, history, out)
	return out, nil
}

func (s *Service) run(ctx context.Context, query string, history []domain.Turn, out chan<- domain.ResultChunk) {
	defer close(out)

	// The current question becomes the newest turn of the working
	// history so truncation weighs it against older turns.
	working := make([]domain.Turn, 0, len(history)+1)
	working = append(working, history...)
	working = append(working, domain.Turn{Role: domain.RoleUser, Content: query})
	working = s.history.Truncate(working)

	start := time.Now()
	docs, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		s.logger.Warn("Retrieval failed", zap.Error(err))
		metrics.QueriesTotal.WithLabelValues("retrieval_error").Inc()
		s.emitFailure(ctx, out)
		return
	}
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())

	prompt, err := s.assembler.Assemble(query, domain.FormatDocs(docs), working)
	if err != nil {
		s.logger.Error("Prompt assembly failed", zap.Error(err))
		metrics.QueriesTotal.WithLabelValues("generation_error").Inc()
		s.emitFailure(ctx, out)
		return
	}

	events, err := s.generator.Stream(ctx, prompt)
	if err != nil {
		s.logger.Warn("Opening generation stream failed", zap.Error(err))
		metrics.QueriesTotal.WithLabelValues("generation_error").Inc()
		s.emitFailure(ctx, out)
		return
	}

	for ev := range events {
		if ev.Err != nil {
			if ctx.Err() != nil {
				metrics.QueriesTotal.WithLabelValues("canceled").Inc()
				return
			}
			s.logger.Warn("Generation stream failed", zap.Error(ev.Err))
			metrics.QueriesTotal.WithLabelValues("generation_error").Inc()
			s.emitFailure(ctx, out)
			return
		}
		select {
		case out <- domain.ResultChunk{QueryResult: ev.Text}:
		case <-ctx.Done():
			metrics.QueriesTotal.WithLabelValues("canceled").Inc()
			return
		}
	}

	if ctx.Err() != nil {
		metrics.QueriesTotal.WithLabelValues("canceled").Inc()
		return
	}
	metrics.QueriesTotal.WithLabelValues("ok").Inc()
}

// emitFailure delivers the single degradation chunk unless the caller is
// already gone.
func (s *Service) emitFailure(ctx context.Context, out chan<- domain.ResultChunk) {
	select {
	case out <- domain.ResultChunk{QueryResult: domain.HighDemandMessage}:
	case <-ctx.Done():
	}
}
