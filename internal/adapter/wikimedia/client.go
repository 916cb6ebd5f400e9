package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/observability"
)

const (
	defaultBaseURL = "https://wikimedia.org/api/rest_v1/metrics/pageviews/per-article"
	project        = "fr.wikipedia"
	userAgent      = "lumen-indicators/1.0 (flu surveillance)"
)

// Client implements domain.SignalProvider using the Wikimedia pageviews REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Wikimedia pageviews client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// DailyViews returns the human page views of a French Wikipedia article on one day.
func (c *Client) DailyViews(ctx context.Context, article string, day time.Time) (float64, error) {
	stamp := day.UTC().Format("20060102")
	u := fmt.Sprintf("%s/%s/all-access/user/%s/daily/%s/%s",
		c.baseURL, project, url.PathEscape(article), stamp, stamp)

	start := time.Now()
	views, err := c.doRequest(ctx, u)
	c.metrics.SignalAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SignalRequests.WithLabelValues("error").Inc()
		return 0, err
	}
	c.metrics.SignalRequests.WithLabelValues("success").Inc()
	return views, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pageviews request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("wikimedia API error: status %d: %s", resp.StatusCode, body)
	}

	var pv response
	if err := json.NewDecoder(resp.Body).Decode(&pv); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	var total float64
	for _, item := range pv.Items {
		total += item.Views
	}
	c.logger.Debug("wikimedia pageviews fetched", "url", fullURL, "views", total)
	return total, nil
}

// Wikimedia API response types.

type response struct {
	Items []item `json:"items"`
}

type item struct {
	Article   string  `json:"article"`
	Timestamp string  `json:"timestamp"` // YYYYMMDDHH
	Views     float64 `json:"views"`
}
