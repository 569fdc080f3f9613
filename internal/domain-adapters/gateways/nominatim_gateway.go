// Package gateways contains HTTP adapters for external services.
package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
)

// DefaultNominatimBaseURL is the public OpenStreetMap geocoding endpoint
const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim's usage policy requires an identifying User-Agent
const nominatimUserAgent = "geoflow/1.0 (reallocate-eu pilot data pipeline)"

// pointFallbackRadius in degrees, used when the geocoder only returns a
// point for a city. Roughly a 10 km box at mid European latitudes.
const pointFallbackRadius = 0.1

// HTTPNominatimGateway implements BoundaryGateway against the Nominatim
// search API using a standard HTTP client.
type HTTPNominatimGateway struct {
	client  *http.Client
	baseURL string
	retry   entities.RetryPolicy
	logger  interfaces.Logger
}

// NewHTTPNominatimGateway creates a Nominatim gateway. baseURL may be empty
// to use the public endpoint.
func NewHTTPNominatimGateway(baseURL string, timeout time.Duration, retry entities.RetryPolicy, logger interfaces.Logger) *HTTPNominatimGateway {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &HTTPNominatimGateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		retry:   retry,
		logger:  logger,
	}
}

// FetchBoundary queries the geocoder for the city's administrative polygon.
// An empty result set is a definitive miss and maps to ErrBoundaryNotFound;
// transient failures are retried with exponential backoff before giving up.
func (g *HTTPNominatimGateway) FetchBoundary(ctx context.Context, city string) (orb.Geometry, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "geojson")
	q.Set("polygon_geojson", "1")
	q.Set("limit", "1")
	q.Set("addressdetails", "1")

	reqURL := fmt.Sprintf("%s/search?%s", g.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create boundary request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)
	req.Header.Set("Accept", "application/json")

	body, err := g.doWithRetry(req)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response for %q: %w", city, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: %q", gateways.ErrBoundaryNotFound, city)
	}

	geom := fc.Features[0].Geometry
	if geom == nil {
		return nil, fmt.Errorf("%w: %q returned an empty geometry", gateways.ErrBoundaryNotFound, city)
	}

	g.logger.Debug("boundary fetched",
		interfaces.F("city", city),
		interfaces.F("geometry", geom.GeoJSONType()))
	return normalizeBoundaryGeometry(geom), nil
}

// normalizeBoundaryGeometry widens degenerate geocoder hits. Some places
// only have a node in OpenStreetMap; a point cannot contain anything, so it
// is inflated to a small box around the location.
func normalizeBoundaryGeometry(geom orb.Geometry) orb.Geometry {
	switch g := geom.(type) {
	case orb.Point:
		return orb.Bound{
			Min: orb.Point{g[0] - pointFallbackRadius, g[1] - pointFallbackRadius},
			Max: orb.Point{g[0] + pointFallbackRadius, g[1] + pointFallbackRadius},
		}.ToPolygon()
	case orb.MultiPoint, orb.LineString, orb.MultiLineString:
		return g.Bound().ToPolygon()
	default:
		return geom
	}
}

// doWithRetry executes the request with exponential backoff on network
// errors and retryable HTTP statuses, returning the response body.
func (g *HTTPNominatimGateway) doWithRetry(req *http.Request) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < g.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := g.retry.Backoff(attempt - 1)
			g.logger.Debug("retrying geocoder request",
				interfaces.F("attempt", attempt+1),
				interfaces.F("backoff", backoff.String()))
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
		}

		resp, err := g.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = fmt.Errorf("geocoder request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read geocoder response: %w", readErr)
				continue
			}
			return body, nil
		}

		lastErr = fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
		if !isRetryableStatus(resp.StatusCode) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("geocoder unavailable after %d attempts: %w", g.retry.MaxAttempts, lastErr)
}

// isRetryableStatus reports whether an HTTP status is worth retrying
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
