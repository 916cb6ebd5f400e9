package wikimedia

import (
	"context"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/cache"
	"github.com/tonytillet/lumen-indicators/internal/domain"
	"github.com/tonytillet/lumen-indicators/internal/observability"
)

// CachedProvider wraps a SignalProvider with an in-memory LRU cache keyed by
// article and day.
type CachedProvider struct {
	inner   domain.SignalProvider
	cache   *cache.LRU[string, float64]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a signal provider.
func NewCachedProvider(inner domain.SignalProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   cache.New[string, float64](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) DailyViews(ctx context.Context, article string, day time.Time) (float64, error) {
	key := article + "|" + day.UTC().Format(time.DateOnly)
	if views, ok := c.cache.Get(key); ok {
		c.metrics.SignalCache.WithLabelValues("hit").Inc()
		return views, nil
	}
	c.metrics.SignalCache.WithLabelValues("miss").Inc()

	views, err := c.inner.DailyViews(ctx, article, day)
	if err != nil {
		// Failures are not cached so the next batch retries.
		return 0, err
	}
	c.cache.Put(key, views)
	return views, nil
}
