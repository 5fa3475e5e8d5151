// Package chat runs the query pipeline inside a persisted session: it
// loads the transcript as history, records the user turn, and records
// the accumulated answer once the stream finishes.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lexhaus/lexchat/internal/domain"
)

// Service ties the query pipeline to session persistence.
type Service struct {
	pipeline Pipeline
	sessions SessionStore
	logger   *zap.Logger
}

// New creates a chat service.
func New(pipeline Pipeline, sessions SessionStore, logger *zap.Logger) *Service {
	return &Service{pipeline: pipeline, sessions: sessions, logger: logger}
}

// Ask answers a question within a session. An empty sessionID starts a
// new session. A blank query is rejected before any session is created
// or persisted. The returned stream mirrors the pipeline output; the
// accumulated answer is persisted as the assistant turn after the stream
// closes, unless it is empty.
func (s *Service) Ask(ctx context.Context, sessionID, query string) (domain.Session, <-chan domain.ResultChunk, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Session{}, nil, domain.ErrInvalidQuery
	}

	var (
		session domain.Session
		err     error
	)
	if sessionID == "" {
		session, err = s.sessions.Create(ctx)
		if err != nil {
			return domain.Session{}, nil, fmt.Errorf("create session: %w", err)
		}
	} else {
		session, err = s.sessions.Get(ctx, sessionID)
		if err != nil {
			return domain.Session{}, nil, err
		}
	}

	msgs, err := s.sessions.ListMessages(ctx, session.ID)
	if err != nil {
		return domain.Session{}, nil, fmt.Errorf("load transcript: %w", err)
	}
	history := make([]domain.Turn, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, m.Turn())
	}

	if _, err := s.sessions.AppendMessage(ctx, session.ID, domain.RoleUser, query); err != nil {
		return domain.Session{}, nil, fmt.Errorf("persist user turn: %w", err)
	}

	chunks, err := s.pipeline.QueryLaws(ctx, query, history)
	if err != nil {
		return domain.Session{}, nil, err
	}

	out := make(chan domain.ResultChunk)
	go s.relay(ctx, session.ID, chunks, out)
	return session, out, nil
}

// relay forwards chunks to the caller while accumulating the answer,
// then persists the assistant turn. Persistence survives caller
// cancellation so a partially delivered answer still lands in the
// transcript.
func (s *Service) relay(ctx context.Context, sessionID string, in <-chan domain.ResultChunk, out chan<- domain.ResultChunk) {
	defer close(out)

	var answer strings.Builder
	for chunk := range in {
		answer.WriteString(chunk.QueryResult)
		select {
		case out <- chunk:
		case <-ctx.Done():
			// Keep draining so accumulation reflects everything the
			// pipeline produced.
		}
	}

	content := answer.String()
	if content == "" {
		return
	}

	saveCtx := context.WithoutCancel(ctx)
	if _, err := s.sessions.AppendMessage(saveCtx, sessionID, domain.RoleAssistant, content); err != nil {
		s.logger.Error("Failed to persist assistant turn",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// CreateSession starts an empty session.
func (s *Service) CreateSession(ctx context.Context) (domain.Session, error) {
	return s.sessions.Create(ctx)
}

// ListSessions returns all sessions, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.sessions.List(ctx)
}

// DeleteSession removes a session and its transcript.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// ListMessages returns a session transcript in order.
func (s *Service) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	return s.sessions.ListMessages(ctx, sessionID)
}
