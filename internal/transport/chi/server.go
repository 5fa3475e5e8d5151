// Package chi exposes the HTTP API: streaming query and chat endpoints
// plus session management.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexhaus/lexchat/internal/domain"
	healthuc "github.com/lexhaus/lexchat/internal/usecase/health"
)

// Pipeline answers a question as a stream of result chunks.
type Pipeline interface {
	QueryLaws(ctx context.Context, query string, history []domain.Turn) (<-chan domain.ResultChunk, error)
}

// Chat runs the pipeline inside persisted sessions.
type Chat interface {
	Ask(ctx context.Context, sessionID, query string) (domain.Session, <-chan domain.ResultChunk, error)
	CreateSession(ctx context.Context) (domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
}

// HealthChecker reports component availability.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	pipeline      Pipeline
	chat          Chat
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(pipeline Pipeline, chat Chat, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		chat:     chat,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, "Query is required"),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, "Session not found"),
		sentinelHandler(domain.ErrRetrievalUnavailable, http.StatusInternalServerError, domain.HighDemandMessage),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusInternalServerError, domain.HighDemandMessage),
		sentinelHandler(domain.ErrProviderError, http.StatusInternalServerError, domain.HighDemandMessage),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Put("/api/query", s.Query)
	r.Put("/api/chat", s.Chat)
	r.Get("/api/sessions", s.ListSessions)
	r.Post("/api/sessions", s.CreateSession)
	r.Delete("/api/sessions/{id}", s.DeleteSession)
	r.Get("/api/messages", s.ListMessages)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type queryRequest struct {
	Query               string        `json:"query"`
	ConversationHistory []turnPayload `json:"conversationHistory"`
}

type turnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

// Query handles PUT /api/query: it streams newline-delimited
// {"queryResult": ...} objects until the pipeline closes.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	history, err := turnsFromPayload(req.ConversationHistory)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chunks, err := s.pipeline.QueryLaws(r.Context(), req.Query, history)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.streamChunks(w, r, chunks)
}

// Chat handles PUT /api/chat: like Query, but inside a persisted
// session. The session ID travels back in the X-Session-Id header so the
// client can read it before the stream starts.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, chunks, err := s.chat.Ask(r.Context(), req.SessionID, req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("X-Session-Id", session.ID)
	s.streamChunks(w, r, chunks)
}

// streamChunks writes each chunk as one JSON line, flushing immediately
// so fragments reach the client as they are generated.
func (s *Server) streamChunks(w http.ResponseWriter, r *http.Request, chunks <-chan domain.ResultChunk) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("Response writer does not support flushing")
		writeError(w, http.StatusInternalServerError, domain.HighDemandMessage)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for chunk := range chunks {
		if r.Context().Err() != nil {
			return
		}
		// An empty fragment carries nothing a client can render.
		if chunk.QueryResult == "" {
			continue
		}
		if err := enc.Encode(chunk); err != nil {
			s.logger.Warn("Writing chunk failed", zap.Error(err))
			return
		}
		flusher.Flush()
	}
}

// CreateSession handles POST /api/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.chat.CreateSession(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToPayload(session))
}

// ListSessions handles GET /api/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.chat.ListSessions(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]sessionPayload, len(sessions))
	for i, session := range sessions {
		items[i] = sessionToPayload(session)
	}
	writeJSON(w, http.StatusOK, items)
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages handles GET /api/messages?sessionId=...
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	msgs, err := s.chat.ListMessages(r.Context(), sessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]messagePayload, len(msgs))
	for i, msg := range msgs {
		items[i] = messageToPayload(msg)
	}
	writeJSON(w, http.StatusOK, items)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type sessionPayload struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

type messagePayload struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func sessionToPayload(s domain.Session) sessionPayload {
	return sessionPayload{ID: s.ID, CreatedAt: s.CreatedAt, MessageCount: s.MessageCount}
}

func messageToPayload(m domain.Message) messagePayload {
	return messagePayload{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func turnsFromPayload(payload []turnPayload) ([]domain.Turn, error) {
	turns := make([]domain.Turn, 0, len(payload))
	for _, p := range payload {
		role := domain.Role(p.Role)
		if !role.Valid() {
			return nil, errors.New("conversation history role must be user or assistant")
		}
		turns = append(turns, domain.Turn{Role: role, Content: p.Content})
	}
	return turns, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("Request failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
