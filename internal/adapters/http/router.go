package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/cto-coach/internal/config"
	"github.com/kirillkom/cto-coach/internal/core/ports"
	"github.com/kirillkom/cto-coach/internal/observability/metrics"
)

// Observer receives per-request domain measurements. *metrics.HTTPServerMetrics implements it.
type Observer interface {
	RecordChatTurn(sourceCount int, duration time.Duration)
	RecordChatFailure()
	RecordUpload(category, status string)
}

type Router struct {
	uploader ports.DocumentUploader
	catalog  ports.DocumentCatalog
	searcher ports.DocumentSearcher
	chat     ports.ChatService

	metrics  *metrics.HTTPServerMetrics
	observer Observer

	validator        *requestValidator
	maxUploadBytes   int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
	allowedOrigins   []string
}

type RouterOption func(*Router)

// WithMetrics exposes /metrics and records HTTP and domain metrics into m.
func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
		if m != nil {
			rt.observer = m
		}
	}
}

func NewRouter(
	cfg config.Config,
	uploader ports.DocumentUploader,
	catalog ports.DocumentCatalog,
	searcher ports.DocumentSearcher,
	chat ports.ChatService,
	opts ...RouterOption,
) *Router {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	rt := &Router{
		uploader:         uploader,
		catalog:          catalog,
		searcher:         searcher,
		chat:             chat,
		observer:         noopObserver{},
		validator:        newRequestValidator(cfg.APIValidateRequests),
		maxUploadBytes:   maxUpload,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
		allowedOrigins:   cfg.AllowedOrigins(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	rt.handle(mux, "GET /health", rt.health)
	rt.handle(mux, "GET /healthz", rt.health)
	rt.handle(mux, "GET /openapi.yaml", rt.openAPIDocument)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	rt.handle(mux, "POST /api/documents/upload", rt.uploadDocument)
	rt.handle(mux, "GET /api/documents", rt.listDocuments)
	rt.handle(mux, "GET /api/documents/categories", rt.listCategories)
	rt.handle(mux, "GET /api/documents/tags", rt.listTags)
	rt.handle(mux, "GET /api/documents/search", rt.searchDocuments)
	rt.handle(mux, "GET /api/documents/{id}", rt.getDocument)
	rt.handle(mux, "DELETE /api/documents/{id}", rt.deleteDocument)
	rt.handle(mux, "GET /api/documents/{id}/related", rt.relatedDocuments)
	rt.handle(mux, "POST /api/documents/{id}/reclassify", rt.reclassifyDocument)

	rt.handle(mux, "POST /api/chat/session", rt.createSession)
	rt.handle(mux, "POST /api/chat/message", rt.sendMessage)
	rt.handle(mux, "GET /api/chat/history/{sessionId}", rt.chatHistory)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler, rt.allowedOrigins)
	return handler
}

func (rt *Router) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, rt.validator.wrap(pattern, h))
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type noopObserver struct{}

func (noopObserver) RecordChatTurn(int, time.Duration) {}
func (noopObserver) RecordChatFailure()                {}
func (noopObserver) RecordUpload(string, string)       {}
