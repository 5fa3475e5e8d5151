package lexchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func streamingHandler(t *testing.T, fragments []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frag := range fragments {
			data, _ := json.Marshal(ResultChunk{QueryResult: frag})
			fmt.Fprintf(w, "%s\n", data)
			flusher.Flush()
		}
	}
}

func drainStream(t *testing.T, stream *Stream) string {
	t.Helper()
	defer stream.Close()

	var answer string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return answer
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		answer += chunk.QueryResult
	}
}

func TestQuery_Stream(t *testing.T) {
	fragments := []string{"**Einführung**", " Die Frist", " beträgt vier Wochen."}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "Welche Kündigungsfrist gilt?" || len(req.ConversationHistory) != 1 {
			t.Errorf("request = %+v", req)
		}
		streamingHandler(t, fragments)(w, r)
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stream, err := client.Query(context.Background(), QueryRequest{
		Query:               "Welche Kündigungsfrist gilt?",
		ConversationHistory: []Turn{{Role: RoleUser, Content: "Hallo"}},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if got := drainStream(t, stream); got != "**Einführung** Die Frist beträgt vier Wochen." {
		t.Errorf("answer = %q", got)
	}
}

func TestQuery_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Query is required"})
	}))
	defer server.Close()

	client, _ := New(server.URL)
	_, err := client.Query(context.Background(), QueryRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Query is required" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestChat_ReturnsSessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("X-Session-Id", "session-7")
		streamingHandler(t, []string{"Antwort."})(w, r)
	}))
	defer server.Close()

	client, _ := New(server.URL)
	sessionID, stream, err := client.Chat(context.Background(), ChatRequest{Query: "Frage?"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if sessionID != "session-7" {
		t.Errorf("sessionID = %q", sessionID)
	}
	if got := drainStream(t, stream); got != "Antwort." {
		t.Errorf("answer = %q", got)
	}
}

func TestSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/sessions":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Session{ID: "s1"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/sessions":
			json.NewEncoder(w).Encode([]Session{{ID: "s1"}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/sessions/s1":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/messages":
			if r.URL.Query().Get("sessionId") != "s1" {
				t.Errorf("sessionId = %q", r.URL.Query().Get("sessionId"))
			}
			json.NewEncoder(w).Encode([]Message{{ID: "m1", SessionID: "s1", Role: RoleUser, Content: "Frage"}})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, _ := New(server.URL)
	ctx := context.Background()

	session, err := client.CreateSession(ctx)
	if err != nil || session.ID != "s1" {
		t.Fatalf("CreateSession = %+v, %v", session, err)
	}

	sessions, err := client.ListSessions(ctx)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("ListSessions = %v, %v", sessions, err)
	}

	msgs, err := client.ListMessages(ctx, "s1")
	if err != nil || len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("ListMessages = %v, %v", msgs, err)
	}

	if err := client.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
}

func TestAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]Session{})
	}))
	defer server.Close()

	client, _ := New(server.URL, WithAPIKey("secret"))
	if _, err := client.ListSessions(context.Background()); err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
