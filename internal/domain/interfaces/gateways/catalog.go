package gateways

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrDatasetNotFound indicates no dataset exists for the requested slug
var ErrDatasetNotFound = errors.New("dataset not found")

// CatalogError is a failed catalog API call, classified for retry decisions
type CatalogError struct {
	Action     string // catalog action, e.g. package_create
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s failed: status %d: %s", e.Action, e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying
func (e *CatalogError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Fatal reports auth/permission/not-found failures that must not be retried
func (e *CatalogError) Fatal() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	default:
		return false
	}
}

// Dataset is a catalog dataset record keyed by its URL slug
type Dataset struct {
	ID        string
	Name      string // URL slug
	Title     string
	Notes     string
	Tags      []string
	Extras    map[string]string
	Private   bool
	OwnerOrg  string
	Resources []Resource
}

// Extra returns the named extras value, or "" when absent
func (d *Dataset) Extra(key string) string {
	if d.Extras == nil {
		return ""
	}
	return d.Extras[key]
}

// FindResource returns the resource with the given name, or nil
func (d *Dataset) FindResource(name string) *Resource {
	for i := range d.Resources {
		if d.Resources[i].Name == name {
			return &d.Resources[i]
		}
	}
	return nil
}

// Resource is one uploaded file variant attached to a dataset
type Resource struct {
	ID          string
	Name        string
	Format      string
	Description string
	Mimetype    string
}

// Organization describes a catalog organization
type Organization struct {
	ID    string
	Name  string
	Title string
}

// CatalogGateway is the consumed surface of the external data catalog.
// Every operation is keyed by slug or name and idempotent when content is
// unchanged. Implementations retry transient failures internally and
// surface *CatalogError for failed calls.
type CatalogGateway interface {
	// CheckConnection verifies the catalog is reachable and returns its title
	CheckConnection(ctx context.Context) (string, error)

	// ShowOrganization fetches organization details by id or name
	ShowOrganization(ctx context.Context, id string) (*Organization, error)

	// GetDataset fetches a dataset by slug; ErrDatasetNotFound when absent
	GetDataset(ctx context.Context, slug string) (*Dataset, error)

	// CreateDataset creates a new dataset and returns the stored record
	CreateDataset(ctx context.Context, dataset *Dataset) (*Dataset, error)

	// UpdateDataset updates an existing dataset in place
	UpdateDataset(ctx context.Context, dataset *Dataset) (*Dataset, error)

	// CreateResource uploads a new resource file to a dataset
	CreateResource(ctx context.Context, datasetID string, resource *Resource, filename string, payload []byte) (*Resource, error)

	// UpdateResource replaces an existing resource's payload
	UpdateResource(ctx context.Context, resource *Resource, filename string, payload []byte) (*Resource, error)
}
