package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tonytillet/lumen-indicators/internal/adapter/httpadapter"
	kafkaadapter "github.com/tonytillet/lumen-indicators/internal/adapter/kafka"
	"github.com/tonytillet/lumen-indicators/internal/adapter/wikimedia"
	"github.com/tonytillet/lumen-indicators/internal/config"
	"github.com/tonytillet/lumen-indicators/internal/domain"
	"github.com/tonytillet/lumen-indicators/internal/observability"
	"github.com/tonytillet/lumen-indicators/internal/pipeline"
	"github.com/tonytillet/lumen-indicators/internal/store"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Wikipedia pageviews enrichment (feature-flagged via WIKI_ENABLED).
	var signals domain.SignalProvider
	if cfg.WikiEnabled {
		client := wikimedia.NewClient(cfg.WikiTimeout, metrics, logger)
		signals = wikimedia.NewCachedProvider(client, cfg.WikiCacheSize, metrics)
		metrics.SignalEnabled.Set(1)
		logger.Info("wikipedia signal enabled", "article", cfg.WikiArticle, "cache_size", cfg.WikiCacheSize, "timeout", cfg.WikiTimeout)
	} else {
		logger.Info("wikipedia signal disabled")
	}

	obsStore := store.New()
	engine := pipeline.NewEngine(obsStore, cfg.Indicators.Params(), cfg.Indicators.CacheSize, metrics, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(signals, cfg.WikiArticle, logger)

	p := pipeline.New(reader, transformer, obsStore, engine, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return p.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
