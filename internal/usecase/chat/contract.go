package chat

import (
	"context"

	"github.com/lexhaus/lexchat/internal/domain"
)

// Pipeline answers a question as a stream of result chunks.
type Pipeline interface {
	QueryLaws(ctx context.Context, query string, history []domain.Turn) (<-chan domain.ResultChunk, error)
}

// SessionStore persists sessions and their transcripts.
type SessionStore interface {
	Create(ctx context.Context) (domain.Session, error)
	Get(ctx context.Context, id string) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Delete(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) (domain.Message, error)
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
}
