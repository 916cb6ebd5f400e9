package pipeline

import (
	"context"
	"log/slog"

	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// ObservationTransformer implements Transformer using the domain parser with
// optional attention-signal enrichment.
type ObservationTransformer struct {
	signals domain.SignalProvider
	article string
	logger  *slog.Logger
}

// NewTransformer creates an ObservationTransformer. Pass a nil provider to
// disable Wikimedia enrichment.
func NewTransformer(signals domain.SignalProvider, article string, logger *slog.Logger) *ObservationTransformer {
	if article == "" {
		article = domain.DefaultWikiArticle
	}
	return &ObservationTransformer{
		signals: signals,
		article: article,
		logger:  logger,
	}
}

func (t *ObservationTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Observation, error) {
	obs, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Observation{}, err
	}

	return domain.EnrichWithSignals(ctx, obs, t.signals, t.article, t.logger), nil
}
