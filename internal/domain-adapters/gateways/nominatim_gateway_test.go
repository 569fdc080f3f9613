package gateways

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
)

// fastRetry keeps test runs quick
var fastRetry = entities.RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   time.Millisecond,
	Multiplier:  2.0,
	MaxDelay:    5 * time.Millisecond,
}

const polygonResult = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"display_name": "Barcelona"},
		"geometry": {"type": "Polygon", "coordinates": [[[2.0,41.3],[2.3,41.3],[2.3,41.5],[2.0,41.5],[2.0,41.3]]]}
	}]
}`

func newNominatim(t *testing.T, handler http.HandlerFunc) *HTTPNominatimGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPNominatimGateway(server.URL, 5*time.Second, fastRetry, &interfaces.NoOpLogger{})
}

func TestFetchBoundaryPolygon(t *testing.T) {
	var gotQuery atomic.Value
	gateway := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(polygonResult))
	})

	geom, err := gateway.FetchBoundary(context.Background(), "barcelona")
	if err != nil {
		t.Fatalf("FetchBoundary failed: %v", err)
	}
	if _, ok := geom.(orb.Polygon); !ok {
		t.Errorf("geometry type = %T, want orb.Polygon", geom)
	}

	query := gotQuery.Load().(string)
	for _, want := range []string{"format=geojson", "polygon_geojson=1", "limit=1", "q=barcelona"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestFetchBoundaryNotFound(t *testing.T) {
	gateway := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
	})

	_, err := gateway.FetchBoundary(context.Background(), "atlantis")
	if !errors.Is(err, gateways.ErrBoundaryNotFound) {
		t.Errorf("error = %v, want ErrBoundaryNotFound", err)
	}
}

func TestFetchBoundaryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	gateway := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(polygonResult))
	})

	if _, err := gateway.FetchBoundary(context.Background(), "barcelona"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestFetchBoundaryGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int64
	gateway := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := gateway.FetchBoundary(context.Background(), "barcelona"); err == nil {
		t.Fatal("expected failure after exhausted retries")
	}
	if calls.Load() != int64(fastRetry.MaxAttempts) {
		t.Errorf("calls = %d, want %d", calls.Load(), fastRetry.MaxAttempts)
	}
}

func TestFetchBoundaryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	gateway := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	if _, err := gateway.FetchBoundary(context.Background(), "barcelona"); err == nil {
		t.Fatal("expected failure")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", calls.Load())
	}
}

func TestNormalizeBoundaryGeometry(t *testing.T) {
	point := orb.Point{2.15, 41.4}
	geom := normalizeBoundaryGeometry(point)
	poly, ok := geom.(orb.Polygon)
	if !ok {
		t.Fatalf("normalized point is %T, want orb.Polygon", geom)
	}
	bound := poly.Bound()
	if !bound.Contains(point) {
		t.Error("fallback polygon should contain the original point")
	}
	if bound.Max[0]-bound.Min[0] < 0.1 {
		t.Error("fallback polygon should have usable extent")
	}

	polygon := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	if got := normalizeBoundaryGeometry(polygon); !orb.Equal(got, polygon) {
		t.Error("polygons should pass through unchanged")
	}
}
