package domain

import (
	"context"
	"log/slog"
	"time"
)

// DefaultWikiArticle is the French Wikipedia article tracked for attention.
const DefaultWikiArticle = "Grippe"

// SignalProvider supplies attention signals for observations lacking them.
type SignalProvider interface {
	// DailyViews returns the page views of an article on one UTC day.
	DailyViews(ctx context.Context, article string, day time.Time) (float64, error)
}

// EnrichWithSignals fills a missing WikiSignal from the provider. If provider
// is nil, the row already has a value, or the lookup fails, the observation is
// returned unchanged (graceful degradation).
func EnrichWithSignals(ctx context.Context, obs Observation, provider SignalProvider, article string, logger *slog.Logger) Observation {
	if provider == nil || obs.WikiSignal != nil {
		return obs
	}

	views, err := provider.DailyViews(ctx, article, obs.Date)
	if err != nil {
		logger.Warn("wiki signal lookup failed",
			"region", obs.Region,
			"date", obs.Date.Format(time.DateOnly),
			"article", article,
			"error", err,
		)
		return obs
	}

	obs.WikiSignal = Float(views)
	return obs
}
