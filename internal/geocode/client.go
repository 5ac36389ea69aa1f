// Package geocode implements domain.Geocoder against a Mapbox-style
// forward-geocoding HTTP API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkarsten/campground-api/internal/domain"
	"github.com/mkarsten/campground-api/internal/observability"
)

// Client resolves free-text addresses via the provider's places endpoint.
// Every call is bounded by the http.Client timeout, and a circuit breaker
// fails fast while the provider is down instead of stalling every create
// and update request behind it.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a geocoding client.
func NewClient(token, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		breaker: newBreaker("geocoder", logger),
		metrics: metrics,
		logger:  logger,
	}
}

// Geocode converts a free-text address to a formatted address and coordinates.
// Returns domain.ErrNoResults when the provider matches nothing, so callers
// never have to guard an empty result list themselves.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(address))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doRequest(ctx, u+"?"+params.Encode())
	})
	c.metrics.ExternalDuration.WithLabelValues("geocode").Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if err == domain.ErrNoResults {
			outcome = "empty"
		}
		c.metrics.ExternalRequests.WithLabelValues("geocode", outcome).Inc()
		return domain.GeocodeResult{}, err
	}

	c.metrics.ExternalRequests.WithLabelValues("geocode", "success").Inc()
	return result.(domain.GeocodeResult), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodeResult{}, fmt.Errorf("geocoder API error: status %d: %s", resp.StatusCode, body)
	}

	var geoResp response
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("decode response: %w", err)
	}

	// An empty feature list is a valid provider response, but there is no
	// first result to read from it.
	if len(geoResp.Features) == 0 {
		return domain.GeocodeResult{}, domain.ErrNoResults
	}

	f := geoResp.Features[0]
	result := domain.GeocodeResult{
		FormattedAddress: f.PlaceName,
	}
	if len(f.Center) == 2 {
		result.Lng = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result, nil
}

// newBreaker builds a circuit breaker tuned for a third-party geocoder:
// trip after a majority of recent calls fail, retry a single probe after
// 30 seconds. ErrNoResults counts as success — the provider answered.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || err == domain.ErrNoResults
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Provider API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lng, lat]
	PlaceName string    `json:"place_name"`
}
