package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_Disabled(t *testing.T) {
	handler := BearerAuthMiddleware(nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when auth disabled", rec.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret-key"})(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "valid key", path: "/api/sessions", header: "Bearer secret-key", want: http.StatusOK},
		{name: "missing header", path: "/api/sessions", want: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/api/sessions", header: "Basic secret-key", want: http.StatusUnauthorized},
		{name: "wrong key", path: "/api/sessions", header: "Bearer other", want: http.StatusUnauthorized},
		{name: "healthz exempt", path: "/healthz", want: http.StatusOK},
		{name: "metrics exempt", path: "/metrics", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
