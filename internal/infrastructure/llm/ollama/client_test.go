package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/cto-coach/internal/infrastructure/llm"
)

func TestGenerateSendsPrompt(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"use small teams"}`))
	}))
	defer server.Close()

	client := New(server.URL, "llama3", time.Second)
	got, err := client.Generate(context.Background(), "question?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "use small teams" {
		t.Fatalf("unexpected answer %q", got)
	}
	if payload["model"] != "llama3" || payload["prompt"] != "question?" || payload["stream"] != false {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestGenerateIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
	}))
	defer server.Close()

	client := New(server.URL, "llama3", time.Second)
	_, err := client.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *llm.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected HTTPStatusError with 502, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
