// Package gateways defines contracts for external service adapters.
package gateways

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

// ErrBoundaryNotFound indicates the geocoding service definitively resolved
// the query to no result. It is not retried.
var ErrBoundaryNotFound = errors.New("boundary not found")

// BoundaryGateway looks up a city's administrative boundary from an external
// geocoding service. Implementations retry transient failures internally
// and return ErrBoundaryNotFound for a definitive miss; any other error
// means the service was unavailable after retries.
type BoundaryGateway interface {
	FetchBoundary(ctx context.Context, city string) (orb.Geometry, error)
}
