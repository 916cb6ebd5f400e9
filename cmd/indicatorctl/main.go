// Command indicatorctl computes flu-surveillance indicators from a local CSV
// or JSON-lines dataset, without Kafka.
//
// Usage:
//
//	indicatorctl snapshot --input data/mock/flu_observations.csv --format yaml
//	indicatorctl rt --input data/mock/flu_observations.csv --region Bretagne
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	initLogging(false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}
