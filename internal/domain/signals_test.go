package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock provider ---

type mockSignalProvider struct {
	views   float64
	err     error
	calls   int
	article string
	day     time.Time
}

func (m *mockSignalProvider) DailyViews(_ context.Context, article string, day time.Time) (float64, error) {
	m.calls++
	m.article = article
	m.day = day
	return m.views, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestEnrichWithSignals_NilProvider(t *testing.T) {
	obs := Observation{Region: "Bretagne", Date: day(2024, 1, 8)}

	result := EnrichWithSignals(context.Background(), obs, nil, DefaultWikiArticle, discardLogger())

	assert.Nil(t, result.WikiSignal)
}

func TestEnrichWithSignals_FillsMissingValue(t *testing.T) {
	provider := &mockSignalProvider{views: 1532}
	obs := Observation{Region: "Bretagne", Date: day(2024, 1, 8)}

	result := EnrichWithSignals(context.Background(), obs, provider, DefaultWikiArticle, discardLogger())

	require.NotNil(t, result.WikiSignal)
	assert.Equal(t, 1532.0, *result.WikiSignal)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "Grippe", provider.article)
	assert.Equal(t, day(2024, 1, 8), provider.day)
}

func TestEnrichWithSignals_KeepsExistingValue(t *testing.T) {
	provider := &mockSignalProvider{views: 1532}
	obs := Observation{Region: "Bretagne", Date: day(2024, 1, 8), WikiSignal: Float(12)}

	result := EnrichWithSignals(context.Background(), obs, provider, DefaultWikiArticle, discardLogger())

	assert.Equal(t, 12.0, *result.WikiSignal)
	assert.Equal(t, 0, provider.calls)
}

func TestEnrichWithSignals_ErrorGracefulDegradation(t *testing.T) {
	provider := &mockSignalProvider{err: errors.New("rate limited")}
	obs := Observation{Region: "Bretagne", Date: day(2024, 1, 8), SentinelCases: Float(40)}

	result := EnrichWithSignals(context.Background(), obs, provider, DefaultWikiArticle, discardLogger())

	assert.Nil(t, result.WikiSignal)
	assert.Equal(t, 40.0, *result.SentinelCases)
	assert.Equal(t, 1, provider.calls)
}
