package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/cto-coach/internal/adapters/http"
	"github.com/kirillkom/cto-coach/internal/bootstrap"
	"github.com/kirillkom/cto-coach/internal/config"
	"github.com/kirillkom/cto-coach/internal/observability/logging"
)

const serviceName = "kb-api"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(os.Stdout, serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("api_failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		return err
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.Uploader, app.Catalog, app.Searcher, app.Chat,
		httpadapter.WithMetrics(app.Metrics),
	)
	server := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		return err
	}
	if cfg.APIMaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("api_listening", "addr", listener.Addr().String(), "max_connections", cfg.APIMaxConnections)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api_shutdown_failed", "error", err)
	}
	slog.Info("api_stopped")
	return nil
}
