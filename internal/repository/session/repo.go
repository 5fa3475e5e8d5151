// Package session persists chat sessions and their messages.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexhaus/lexchat/internal/domain"
)

const messagesSuffix = ":messages"

var sessionKeyPrefix = domain.KeyPrefix + "session:"

// store is the consumer interface for session persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// Repo stores sessions as hashes and their messages as ordered lists.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a session repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// WithClock overrides the time source, used in tests.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

func sessionKey(id string) string  { return sessionKeyPrefix + id }
func messagesKey(id string) string { return sessionKey(id) + messagesSuffix }

// Create stores a new session with a generated ID.
func (r *Repo) Create(ctx context.Context) (domain.Session, error) {
	s := domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now().UTC(),
	}

	fields := map[string]string{
		"id":         s.ID,
		"created_at": s.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, sessionKey(s.ID), fields); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// Get loads a session by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Session, error) {
	fields, err := r.store.HGetAll(ctx, sessionKey(id))
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	s := parseSession(fields)
	if s.MessageCount, err = r.messageCount(ctx, s.ID); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

// List returns all sessions, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Session, error) {
	keys, err := r.store.Scan(ctx, sessionKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	sessions := make([]domain.Session, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, messagesSuffix) {
			continue
		}
		fields, err := r.store.HGetAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", key, err)
		}
		if len(fields) == 0 {
			continue
		}

		s := parseSession(fields)
		if s.MessageCount, err = r.messageCount(ctx, s.ID); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Delete removes a session and its messages.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, sessionKey(id))
	if err != nil {
		return fmt.Errorf("check session %s: %w", id, err)
	}
	if !exists {
		return domain.ErrSessionNotFound
	}

	if err := r.store.Del(ctx, messagesKey(id)); err != nil {
		return fmt.Errorf("delete messages %s: %w", id, err)
	}
	if err := r.store.Del(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// AppendMessage persists one turn at the end of the session transcript.
func (r *Repo) AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) (domain.Message, error) {
	exists, err := r.store.Exists(ctx, sessionKey(sessionID))
	if err != nil {
		return domain.Message{}, fmt.Errorf("check session %s: %w", sessionID, err)
	}
	if !exists {
		return domain.Message{}, domain.ErrSessionNotFound
	}

	msg := domain.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: r.now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal message: %w", err)
	}
	if err := r.store.RPush(ctx, messagesKey(sessionID), string(data)); err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the session transcript in insertion order.
func (r *Repo) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	exists, err := r.store.Exists(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("check session %s: %w", sessionID, err)
	}
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	raw, err := r.store.LRange(ctx, messagesKey(sessionID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list messages %s: %w", sessionID, err)
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// A corrupt entry should not hide the rest of the transcript.
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// messageCount reports the transcript length without loading it.
func (r *Repo) messageCount(ctx context.Context, id string) (int, error) {
	n, err := r.store.LLen(ctx, messagesKey(id))
	if err != nil {
		return 0, fmt.Errorf("count messages %s: %w", id, err)
	}
	return int(n), nil
}

func parseSession(fields map[string]string) domain.Session {
	s := domain.Session{ID: fields["id"]}
	if ts, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		s.CreatedAt = ts
	}
	return s
}
