package pipeline

import (
	"log/slog"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/cache"
	"github.com/tonytillet/lumen-indicators/internal/domain"
	"github.com/tonytillet/lumen-indicators/internal/observability"
	"github.com/tonytillet/lumen-indicators/internal/store"
)

type snapshotKey struct {
	version uint64
	asOf    time.Time
}

// Engine computes indicator snapshots from the observation store. Results are
// cached per (store version, as-of date) so repeated reads between writes are
// served without recomputation.
type Engine struct {
	store   *store.Store
	params  domain.Params
	cache   *cache.LRU[snapshotKey, domain.Snapshot]
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine over s using the given model parameters.
func NewEngine(s *store.Store, params domain.Params, cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		store:   s,
		params:  params,
		cache:   cache.New[snapshotKey, domain.Snapshot](cacheSize),
		metrics: metrics,
		logger:  logger,
	}
}

// Params returns the model parameters the engine was built with.
func (e *Engine) Params() domain.Params {
	return e.params
}

// Snapshot returns the indicators computed on rows dated on or before asOf.
// The zero time selects the whole table.
func (e *Engine) Snapshot(asOf time.Time) domain.Snapshot {
	table, version := e.store.Snapshot()
	key := snapshotKey{version: version, asOf: asOf.UTC()}

	if snap, ok := e.cache.Get(key); ok {
		e.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return snap
	}
	e.metrics.SnapshotCache.WithLabelValues("miss").Inc()

	start := time.Now()
	snap := domain.ComputeSnapshot(table.AsOf(asOf), e.params)
	e.metrics.SnapshotComputeDuration.Observe(time.Since(start).Seconds())

	e.cache.Put(key, snap)
	return snap
}

// Refresh computes the latest snapshot and publishes it to the indicator gauges.
func (e *Engine) Refresh() domain.Snapshot {
	snap := e.Snapshot(time.Time{})

	e.metrics.StoredObservations.Set(float64(e.store.Len()))
	setIndicatorGauges(e.metrics, snap)

	e.logger.Debug("indicator snapshot refreshed",
		"as_of", snap.AsOf.Format(time.DateOnly),
		"regions", len(snap.Regions),
		"store_version", e.store.Version(),
		"granularity", snap.Granularity.String(),
		"rt", float64(snap.National.Rt),
	)
	return snap
}

func setIndicatorGauges(m *observability.Metrics, snap domain.Snapshot) {
	m.NationalIndicator.WithLabelValues("rt").Set(float64(snap.National.Rt))
	m.NationalIndicator.WithLabelValues("sc").Set(float64(snap.National.SC))
	m.NationalIndicator.WithLabelValues("severity").Set(float64(snap.National.Severity))
	m.NationalIndicator.WithLabelValues("lumen").Set(float64(snap.National.Lumen))

	for _, r := range snap.Regions {
		m.RegionalIndicator.WithLabelValues(r.Region, "rt").Set(float64(r.Rt))
		m.RegionalIndicator.WithLabelValues(r.Region, "sc").Set(float64(r.SC))
		m.RegionalIndicator.WithLabelValues(r.Region, "severity").Set(float64(r.Severity))
		m.RegionalIndicator.WithLabelValues(r.Region, "lumen").Set(float64(r.Lumen))
	}
}
