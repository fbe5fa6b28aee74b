package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/documents/42":            "/api/documents/{id}",
		"/api/documents/42/related":    "/api/documents/{id}/related",
		"/api/documents/categories":    "/api/documents/categories",
		"/api/chat/history/3f1c9a52-x": "/api/chat/history/{sessionId}",
		"/health":                      "/health",
	}
	for input, want := range tests {
		if got := normalizePath(input); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestMiddlewareExportsRouteMetrics(t *testing.T) {
	m := NewHTTPServerMetrics("kb-api")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := m.Middleware(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/7", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	m.RecordChatTurn(0, 150*time.Millisecond)
	m.RecordUpload("Architecture", "ok")
	m.RecordGenerationFailure("gemini", "quota")
	m.RecordBreakerState("gemini.generate", "closed", "open")

	body := scrape(t, m)
	wants := []string{
		`kb_http_requests_total{method="GET",path="/api/documents/{id}",service="kb-api",status="404"} 1`,
		`kb_chat_no_context_total{service="kb-api"} 1`,
		`kb_documents_uploads_total{category="Architecture",service="kb-api",status="ok"} 1`,
		`kb_generation_failures_total{kind="quota",provider="gemini",service="kb-api"} 1`,
		`kb_resilience_breaker_open{operation="gemini.generate",service="kb-api"} 1`,
	}
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q\n%s", want, body)
		}
	}
}

func scrape(t *testing.T, m *HTTPServerMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	raw, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(raw)
}
