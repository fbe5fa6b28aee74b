// Command mcp serves the knowledge base as MCP tools over stdio.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	mcpadapter "github.com/kirillkom/cto-coach/internal/adapters/mcp"
	"github.com/kirillkom/cto-coach/internal/bootstrap"
	"github.com/kirillkom/cto-coach/internal/config"
	"github.com/kirillkom/cto-coach/internal/observability/logging"
)

const serviceName = "kb-mcp"

func main() {
	_ = godotenv.Load()

	// stdout carries the protocol, so every log line goes to stderr.
	slog.SetDefault(logging.NewJSONLogger(os.Stderr, serviceName, "info"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(os.Stderr, serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("mcp_failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		return err
	}
	defer app.Close()

	tools := mcpadapter.NewToolServer(app.Searcher, app.Chat, app.Catalog)
	slog.Info("mcp_serving_stdio")
	if err := tools.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
