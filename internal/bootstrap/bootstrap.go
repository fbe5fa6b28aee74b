package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/cto-coach/internal/config"
	"github.com/kirillkom/cto-coach/internal/core/knowledge"
	"github.com/kirillkom/cto-coach/internal/core/ports"
	"github.com/kirillkom/cto-coach/internal/core/usecase"
	"github.com/kirillkom/cto-coach/internal/infrastructure/events/nats"
	"github.com/kirillkom/cto-coach/internal/infrastructure/extractor/filetext"
	"github.com/kirillkom/cto-coach/internal/infrastructure/graph/neo4j"
	"github.com/kirillkom/cto-coach/internal/infrastructure/llm"
	"github.com/kirillkom/cto-coach/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/cto-coach/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/cto-coach/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/cto-coach/internal/infrastructure/resilience"
	"github.com/kirillkom/cto-coach/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/cto-coach/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	Uploader ports.DocumentUploader
	Catalog  ports.DocumentCatalog
	Searcher ports.DocumentSearcher
	Chat     ports.ChatService

	closers []func()
}

// New wires every adapter. NATS and Neo4j are optional and stay off while their URLs are empty.
func New(ctx context.Context, cfg config.Config, service string) (_ *App, err error) {
	app := &App{
		Config:  cfg,
		Metrics: metrics.NewHTTPServerMetrics(service),
	}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	app.closers = append(app.closers, func() { _ = db.Close() })
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)
	chats := postgres.NewChatRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	extractor := filetext.NewExtractor(storage)

	executor := resilience.NewExecutor(ResilienceConfig(cfg)).
		WithStateObserver(app.Metrics.RecordBreakerState)

	var events ports.DocumentEventPublisher = nats.Noop{}
	if cfg.NATSURL != "" {
		publisher, err := nats.NewPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.closers = append(app.closers, publisher.Close)
		events = publisher
		slog.Info("document_events_enabled", "subject_prefix", cfg.NATSSubjectPrefix)
	}

	var graph ports.TagGraph
	if cfg.Neo4jURI != "" {
		tagGraph, err := neo4j.New(ctx, neo4j.Config{
			URI:      cfg.Neo4jURI,
			User:     cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		})
		if err != nil {
			return nil, fmt.Errorf("init tag graph: %w", err)
		}
		app.closers = append(app.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tagGraph.Close(closeCtx)
		})
		if err := tagGraph.EnsureConstraints(ctx); err != nil {
			return nil, fmt.Errorf("ensure graph constraints: %w", err)
		}
		graph = tagGraph
		slog.Info("tag_graph_enabled", "uri", cfg.Neo4jURI)
	}

	generator := NewGenerator(cfg, executor).WithFailureObserver(app.Metrics.RecordGenerationFailure)

	classifier := knowledge.NewClassifier()
	scorer := knowledge.NewScorer(ScoreWeights(cfg))
	searcher := usecase.NewSearchUseCase(documents, scorer, cfg.RAGTopK)

	app.Uploader = usecase.NewUploadDocumentUseCase(documents, storage, extractor, classifier, events, graph)
	app.Catalog = usecase.NewCatalogUseCase(documents, storage, classifier, events, graph)
	app.Searcher = searcher
	app.Chat = usecase.NewChatUseCase(chats, searcher, generator, cfg.RAGTopK)

	slog.Info("bootstrap_completed",
		"generator_provider", cfg.GeneratorProvider,
		"events_enabled", cfg.NATSURL != "",
		"graph_enabled", cfg.Neo4jURI != "",
	)
	return app, nil
}

// Close releases adapters in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func ResilienceConfig(cfg config.Config) resilience.Config {
	return resilience.ForGeneration(cfg.GeneratorRetryMaxAttempts, cfg.GeneratorBreakerEnabled)
}

func ScoreWeights(cfg config.Config) knowledge.Weights {
	return knowledge.Weights{
		Title:             cfg.ScoreWeightTitle,
		Summary:           cfg.ScoreWeightSummary,
		ContentOccurrence: cfg.ScoreWeightContent,
		Tag:               cfg.ScoreWeightTag,
		Category:          cfg.ScoreWeightCategory,
	}
}

// NewGenerator picks the configured provider and wraps it with retries, the breaker and error normalization.
func NewGenerator(cfg config.Config, executor *resilience.Executor) *llm.ResilientGenerator {
	timeout := time.Duration(cfg.GeneratorTimeoutSeconds) * time.Second
	var provider ports.AnswerGenerator
	switch cfg.GeneratorProvider {
	case config.ProviderOllama:
		provider = ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, timeout)
	default:
		provider = gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, timeout)
	}
	return llm.NewResilientGenerator(cfg.GeneratorProvider, provider, executor)
}
