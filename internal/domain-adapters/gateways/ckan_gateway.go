package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
)

// HTTPCatalogGateway implements CatalogGateway against the CKAN action API
type HTTPCatalogGateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
	retry   entities.RetryPolicy
	logger  interfaces.Logger
}

// NewHTTPCatalogGateway creates a CKAN gateway. baseURL is the portal root,
// e.g. https://data.example.org, without the /api/3 suffix.
func NewHTTPCatalogGateway(baseURL, apiKey string, timeout time.Duration, retry entities.RetryPolicy, logger interfaces.Logger) *HTTPCatalogGateway {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &HTTPCatalogGateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		retry:   retry,
		logger:  logger,
	}
}

// CKAN wire representations. Tags and extras are lists of objects on the
// wire but maps and string slices in the domain.

type ckanTag struct {
	Name string `json:"name"`
}

type ckanExtra struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ckanResource struct {
	ID          string `json:"id,omitempty"`
	PackageID   string `json:"package_id,omitempty"`
	Name        string `json:"name"`
	Format      string `json:"format"`
	Description string `json:"description,omitempty"`
	Mimetype    string `json:"mimetype,omitempty"`
}

type ckanDataset struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Title     string         `json:"title"`
	Notes     string         `json:"notes,omitempty"`
	Tags      []ckanTag      `json:"tags,omitempty"`
	Extras    []ckanExtra    `json:"extras,omitempty"`
	Private   bool           `json:"private"`
	OwnerOrg  string         `json:"owner_org,omitempty"`
	Resources []ckanResource `json:"resources,omitempty"`
}

type ckanEnvelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *ckanAPIError   `json:"error"`
}

type ckanAPIError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func toWireDataset(d *gateways.Dataset) *ckanDataset {
	wire := &ckanDataset{
		ID:       d.ID,
		Name:     d.Name,
		Title:    d.Title,
		Notes:    d.Notes,
		Private:  d.Private,
		OwnerOrg: d.OwnerOrg,
	}
	for _, tag := range d.Tags {
		wire.Tags = append(wire.Tags, ckanTag{Name: tag})
	}
	for key, value := range d.Extras {
		wire.Extras = append(wire.Extras, ckanExtra{Key: key, Value: value})
	}
	return wire
}

func fromWireDataset(w *ckanDataset) *gateways.Dataset {
	d := &gateways.Dataset{
		ID:       w.ID,
		Name:     w.Name,
		Title:    w.Title,
		Notes:    w.Notes,
		Private:  w.Private,
		OwnerOrg: w.OwnerOrg,
	}
	for _, tag := range w.Tags {
		d.Tags = append(d.Tags, tag.Name)
	}
	if len(w.Extras) > 0 {
		d.Extras = make(map[string]string, len(w.Extras))
		for _, extra := range w.Extras {
			d.Extras[extra.Key] = extra.Value
		}
	}
	for _, res := range w.Resources {
		d.Resources = append(d.Resources, gateways.Resource{
			ID:          res.ID,
			Name:        res.Name,
			Format:      res.Format,
			Description: res.Description,
			Mimetype:    res.Mimetype,
		})
	}
	return d
}

// CheckConnection calls status_show and returns the portal title
func (g *HTTPCatalogGateway) CheckConnection(ctx context.Context) (string, error) {
	result, err := g.callAction(ctx, "status_show", map[string]any{})
	if err != nil {
		return "", err
	}
	var status struct {
		SiteTitle string `json:"site_title"`
	}
	if err := json.Unmarshal(result, &status); err != nil {
		return "", fmt.Errorf("failed to decode status_show result: %w", err)
	}
	return status.SiteTitle, nil
}

// ShowOrganization fetches organization details by id or name
func (g *HTTPCatalogGateway) ShowOrganization(ctx context.Context, id string) (*gateways.Organization, error) {
	result, err := g.callAction(ctx, "organization_show", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	var org gateways.Organization
	if err := json.Unmarshal(result, &org); err != nil {
		return nil, fmt.Errorf("failed to decode organization_show result: %w", err)
	}
	return &org, nil
}

// GetDataset fetches a dataset by slug, mapping a 404 to ErrDatasetNotFound
func (g *HTTPCatalogGateway) GetDataset(ctx context.Context, slug string) (*gateways.Dataset, error) {
	result, err := g.callAction(ctx, "package_show", map[string]any{"id": slug})
	if err != nil {
		var catErr *gateways.CatalogError
		if errors.As(err, &catErr) && catErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", gateways.ErrDatasetNotFound, slug)
		}
		return nil, err
	}
	var wire ckanDataset
	if err := json.Unmarshal(result, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", slug, err)
	}
	return fromWireDataset(&wire), nil
}

// CreateDataset creates a dataset and returns the stored record
func (g *HTTPCatalogGateway) CreateDataset(ctx context.Context, dataset *gateways.Dataset) (*gateways.Dataset, error) {
	return g.writeDataset(ctx, "package_create", dataset)
}

// UpdateDataset replaces an existing dataset's metadata
func (g *HTTPCatalogGateway) UpdateDataset(ctx context.Context, dataset *gateways.Dataset) (*gateways.Dataset, error) {
	return g.writeDataset(ctx, "package_update", dataset)
}

func (g *HTTPCatalogGateway) writeDataset(ctx context.Context, action string, dataset *gateways.Dataset) (*gateways.Dataset, error) {
	payload, err := json.Marshal(toWireDataset(dataset))
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset %s: %w", dataset.Name, err)
	}
	result, err := g.callActionRaw(ctx, action, func() (io.Reader, string, error) {
		return bytes.NewReader(payload), "application/json", nil
	})
	if err != nil {
		return nil, err
	}
	var wire ckanDataset
	if err := json.Unmarshal(result, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", action, err)
	}
	g.logger.Info("dataset written",
		interfaces.F("action", action),
		interfaces.F("slug", wire.Name),
		interfaces.F("id", wire.ID))
	return fromWireDataset(&wire), nil
}

// CreateResource uploads a new file resource to a dataset
func (g *HTTPCatalogGateway) CreateResource(ctx context.Context, datasetID string, resource *gateways.Resource, filename string, payload []byte) (*gateways.Resource, error) {
	fields := map[string]string{
		"package_id":  datasetID,
		"name":        resource.Name,
		"format":      resource.Format,
		"description": resource.Description,
		"mimetype":    resource.Mimetype,
	}
	return g.uploadResource(ctx, "resource_create", fields, filename, payload)
}

// UpdateResource replaces the payload of an existing resource
func (g *HTTPCatalogGateway) UpdateResource(ctx context.Context, resource *gateways.Resource, filename string, payload []byte) (*gateways.Resource, error) {
	fields := map[string]string{
		"id":          resource.ID,
		"name":        resource.Name,
		"format":      resource.Format,
		"description": resource.Description,
		"mimetype":    resource.Mimetype,
	}
	return g.uploadResource(ctx, "resource_update", fields, filename, payload)
}

func (g *HTTPCatalogGateway) uploadResource(ctx context.Context, action string, fields map[string]string, filename string, payload []byte) (*gateways.Resource, error) {
	// The multipart body must be rebuilt on every retry attempt
	buildBody := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range fields {
			if value == "" {
				continue
			}
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %s: %w", key, err)
			}
		}
		part, err := writer.CreateFormFile("upload", filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create upload part: %w", err)
		}
		if _, err := part.Write(payload); err != nil {
			return nil, "", fmt.Errorf("failed to write upload payload: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
		}
		return &buf, writer.FormDataContentType(), nil
	}

	result, err := g.callActionRaw(ctx, action, buildBody)
	if err != nil {
		return nil, err
	}

	var wire ckanResource
	if err := json.Unmarshal(result, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", action, err)
	}
	g.logger.Info("resource uploaded",
		interfaces.F("action", action),
		interfaces.F("name", wire.Name),
		interfaces.F("bytes", len(payload)))
	return &gateways.Resource{
		ID:          wire.ID,
		Name:        wire.Name,
		Format:      wire.Format,
		Description: wire.Description,
		Mimetype:    wire.Mimetype,
	}, nil
}

// callAction posts a JSON request body to an action endpoint
func (g *HTTPCatalogGateway) callAction(ctx context.Context, action string, params map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", action, err)
	}
	return g.callActionRaw(ctx, action, func() (io.Reader, string, error) {
		return bytes.NewReader(payload), "application/json", nil
	})
}

// callActionRaw posts to /api/3/action/<action> with retry on transient
// failures. newBody is called per attempt so the request body can be replayed.
func (g *HTTPCatalogGateway) callActionRaw(ctx context.Context, action string, newBody func() (io.Reader, string, error)) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/api/3/action/%s", g.baseURL, action)
	var lastErr error

	for attempt := 0; attempt < g.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := g.retry.Backoff(attempt - 1)
			g.logger.Debug("retrying catalog action",
				interfaces.F("action", action),
				interfaces.F("attempt", attempt+1),
				interfaces.F("backoff", backoff.String()))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, contentType, err := newBody()
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s request: %w", action, err)
		}
		req.Header.Set("Content-Type", contentType)
		if g.apiKey != "" {
			req.Header.Set("Authorization", g.apiKey)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = fmt.Errorf("catalog %s request failed: %w", action, err)
			continue
		}

		result, callErr := decodeEnvelope(action, resp)
		if callErr == nil {
			return result, nil
		}

		lastErr = callErr
		var catErr *gateways.CatalogError
		if errors.As(callErr, &catErr) && catErr.Transient() {
			continue
		}
		return nil, callErr
	}

	return nil, fmt.Errorf("catalog unavailable after %d attempts: %w", g.retry.MaxAttempts, lastErr)
}

func decodeEnvelope(action string, resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &gateways.CatalogError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
		}
	}

	var envelope ckanEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s envelope: %w", action, err)
	}
	if !envelope.Success {
		message := "unknown error"
		if envelope.Error != nil {
			message = envelope.Error.Message
		}
		return nil, &gateways.CatalogError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Body:       message,
		}
	}
	return envelope.Result, nil
}

// truncateBody keeps error payloads readable in logs and messages
func truncateBody(body []byte) string {
	const limit = 512
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
