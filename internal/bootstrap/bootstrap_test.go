package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/cto-coach/internal/config"
	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/infrastructure/resilience"
)

func TestResilienceConfigHonoursGeneratorSettings(t *testing.T) {
	cfg := config.Defaults()
	cfg.GeneratorRetryMaxAttempts = 3
	cfg.GeneratorBreakerEnabled = false

	got := ResilienceConfig(cfg)
	if got.RetryMaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", got.RetryMaxAttempts)
	}
	if got.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestScoreWeightsMapsConfig(t *testing.T) {
	w := ScoreWeights(config.Defaults())
	if w.Title != 10 || w.Summary != 8 || w.ContentOccurrence != 2 || w.Tag != 5 || w.Category != 3 {
		t.Fatalf("unexpected weights %+v", w)
	}
}

func TestNewGeneratorUsesOllamaProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "from ollama"})
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.GeneratorProvider = config.ProviderOllama
	cfg.OllamaURL = srv.URL

	gen := NewGenerator(cfg, resilience.NewExecutor(resilience.DefaultConfig()))
	answer, err := gen.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "from ollama" {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestNewGeneratorGeminiWithoutKeyIsAuthError(t *testing.T) {
	cfg := config.Defaults()
	cfg.GeminiAPIKey = ""

	var failures []string
	gen := NewGenerator(cfg, resilience.NewExecutor(resilience.DefaultConfig())).
		WithFailureObserver(func(provider, kind string) { failures = append(failures, provider+"/"+kind) })

	_, err := gen.Generate(context.Background(), "prompt")
	if !domain.IsKind(err, domain.ErrUpstreamAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if len(failures) != 1 || failures[0] != "gemini/auth" {
		t.Fatalf("unexpected failure observations %v", failures)
	}
}
