package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Longevitate/carefinder/internal/api/handlers"
	"github.com/Longevitate/carefinder/internal/api/routes"
	"github.com/Longevitate/carefinder/internal/bootstrap"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	"github.com/Longevitate/carefinder/internal/mcp"
	"github.com/Longevitate/carefinder/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("Failed to shut down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	pipeline, err := bootstrap.Build(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build search pipeline")
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close pipeline connections")
		}
	}()
	pipeline.Store.StartPeriodicRefresh(ctx, cfg.Corpus.RefreshInterval)
	if err := pipeline.WatchCorpusUpdates(ctx); err != nil {
		log.Warn().Err(err).Msg("Corpus update events unavailable, relying on periodic refresh")
	}

	var mcpHandler http.Handler
	if cfg.Server.MCPEnabled {
		mcpServer := mcp.NewServer(cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion)
		mcp.RegisterCareTools(mcpServer.MCP(), &mcp.ToolDeps{
			Searcher:  pipeline.Ranking,
			Assembler: pipeline.Assembler,
			Snapshots: pipeline.Store,
		})
		mcpHandler = mcpServer.Handler()
	}

	router := routes.NewRouter(
		handlers.NewSearchHandler(pipeline.Ranking, pipeline.Assembler),
		handlers.NewCatalogHandler(pipeline.Store),
		mcpHandler,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Bool("mcp", mcpHandler != nil).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}
