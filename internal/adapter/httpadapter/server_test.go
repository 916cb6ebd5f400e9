package httpadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonytillet/lumen-indicators/internal/adapter/httpadapter"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSnapshots struct {
	asOf []time.Time
}

func (m *mockSnapshots) Snapshot(asOf time.Time) domain.Snapshot {
	m.asOf = append(m.asOf, asOf)
	return domain.Snapshot{
		AsOf:           time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		Granularity:    domain.Weekly,
		WeightsVersion: "v1",
		National:       domain.NationalIndicators{Rt: 1.1, SC: 0.6, Severity: 12, Lumen: 30},
		Regions: []domain.RegionIndicators{
			{Region: "Bretagne", Rt: 1.2, SC: 0.7, Severity: 10, Lumen: 31},
			{Region: "Île-de-France", Rt: domain.NaN(), SC: domain.NaN(), Severity: 14, Lumen: 29},
		},
	}
}

func (m *mockSnapshots) Params() domain.Params {
	return domain.DefaultParams()
}

func newTestServer(readyErr error) (*httpadapter.Server, *mockSnapshots) {
	snaps := &mockSnapshots{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, snaps, logger), snaps
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(fmt.Errorf("not ready yet"))
	rec := get(srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndicators_Latest(t *testing.T) {
	srv, snaps := newTestServer(nil)
	rec := get(srv, "/indicators")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, snaps.asOf, 1)
	assert.True(t, snaps.asOf[0].IsZero())

	var body domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.Value(1.1), body.National.Rt)
	assert.Equal(t, domain.Weekly, body.Granularity)
	assert.Contains(t, rec.Body.String(), `"rt":null`)
}

func TestIndicators_AsOf(t *testing.T) {
	srv, snaps := newTestServer(nil)
	rec := get(srv, "/indicators?as_of=2024-01-03")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, snaps.asOf, 1)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), snaps.asOf[0])
}

func TestIndicators_BadAsOf(t *testing.T) {
	srv, snaps := newTestServer(nil)
	rec := get(srv, "/indicators?as_of=03/01/2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, snaps.asOf)
}

func TestIndicators_Regions(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(srv, "/indicators/regions")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		AsOf    string                    `json:"as_of"`
		Regions []domain.RegionIndicators `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-01-08", body.AsOf)
	require.Len(t, body.Regions, 2)
	assert.Equal(t, "Bretagne", body.Regions[0].Region)
}

func TestIndicators_Region(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := get(srv, "/indicators/regions/Bretagne")
	require.Equal(t, http.StatusOK, rec.Code)
	var region domain.RegionIndicators
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &region))
	assert.Equal(t, domain.Value(1.2), region.Rt)

	rec = get(srv, "/indicators/regions/%C3%8Ele-de-France")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &region))
	assert.Equal(t, "Île-de-France", region.Region)
	assert.True(t, region.Rt.IsNaN())
}

func TestIndicators_UnknownRegion(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(srv, "/indicators/regions/Atlantis")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Atlantis")
}

func TestParamsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(srv, "/indicators/params")
	require.Equal(t, http.StatusOK, rec.Code)

	var p domain.Params
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, domain.DefaultSerialIntervalHorizon, p.SerialInterval.Horizon)
	assert.Equal(t, "v1", p.Lumen.Weights.Version)
}
