package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
)

// TabularExporter flattens a feature collection into tabular bytes for the
// secondary resource format
type TabularExporter interface {
	Export(fc *geojson.FeatureCollection) ([]byte, error)
}

// ResourcePublisher executes publish plans against the catalog: dataset
// upsert followed by one resource upsert per configured format. Resource
// identity is keyed by dataset slug + format, so re-running a plan for
// unchanged content is a no-op at plan level and an in-place replacement
// otherwise.
type ResourcePublisher struct {
	catalog gateways.CatalogGateway
	tabular TabularExporter
	logger  interfaces.Logger
	cfg     entities.PublishConfig
	orgID   string
}

// NewResourcePublisher creates a publisher over the given catalog gateway
func NewResourcePublisher(catalog gateways.CatalogGateway, tabular TabularExporter, logger interfaces.Logger, cfg entities.PublishConfig, orgID string) *ResourcePublisher {
	return &ResourcePublisher{
		catalog: catalog,
		tabular: tabular,
		logger:  logger,
		cfg:     cfg,
		orgID:   orgID,
	}
}

// CheckConnection verifies catalog reachability and organization membership
// before a publish run. A missing organization is a warning, not an abort.
func (p *ResourcePublisher) CheckConnection(ctx context.Context) error {
	title, err := p.catalog.CheckConnection(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog: %w", err)
	}
	p.logger.Info("connected to catalog", interfaces.F("site", title))

	if p.orgID != "" {
		org, err := p.catalog.ShowOrganization(ctx, p.orgID)
		if err != nil {
			p.logger.Warn("organization not found, datasets will be created without one",
				interfaces.F("org", p.orgID), interfaces.F("err", err))
			p.orgID = ""
		} else {
			p.logger.Info("publishing into organization", interfaces.F("org", org.Name))
		}
	}
	return nil
}

// Publish executes one plan. Returns nil for a skip. raw is the original
// file content uploaded as the native-format resource.
func (p *ResourcePublisher) Publish(ctx context.Context, plan *entities.PublishPlan, report *entities.ValidationReport, fc *geojson.FeatureCollection, raw []byte) (*entities.PublishRecord, error) {
	if plan.Action == entities.ActionSkip {
		p.logger.Debug("skipping publish", interfaces.F("slug", plan.Slug), interfaces.F("reason", plan.Reason))
		return nil, nil
	}

	dataset := p.BuildDatasetMetadata(plan, report)

	var stored *gateways.Dataset
	var err error
	switch plan.Action {
	case entities.ActionCreate:
		stored, err = p.catalog.CreateDataset(ctx, dataset)
	case entities.ActionUpdate:
		existing, getErr := p.catalog.GetDataset(ctx, plan.Slug)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load dataset %s for update: %w", plan.Slug, getErr)
		}
		dataset.ID = existing.ID
		dataset.Resources = existing.Resources
		stored, err = p.catalog.UpdateDataset(ctx, dataset)
	default:
		return nil, fmt.Errorf("unknown plan action %q", plan.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset upsert for %s failed: %w", plan.Slug, err)
	}

	record := &entities.PublishRecord{
		Slug:        plan.Slug,
		DatasetID:   stored.ID,
		ResourceIDs: make(map[string]string, len(p.cfg.Formats)),
		ContentHash: plan.ContentHash,
		Version:     plan.Version,
		PublishedAt: time.Now(),
	}

	base := strings.TrimSuffix(report.File.Name, ".geojson")
	for _, format := range p.cfg.Formats {
		payload, filename, mimetype, err := p.resourcePayload(format, base, fc, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s resource for %s: %w", format, plan.Slug, err)
		}

		resource := &gateways.Resource{
			Name:        fmt.Sprintf("%s (%s)", base, format),
			Format:      format,
			Description: fmt.Sprintf("%s rendition of %s", format, report.File.Name),
			Mimetype:    mimetype,
		}

		existing := stored.FindResource(resource.Name)
		var uploaded *gateways.Resource
		if existing != nil {
			resource.ID = existing.ID
			uploaded, err = p.catalog.UpdateResource(ctx, resource, filename, payload)
		} else {
			uploaded, err = p.catalog.CreateResource(ctx, stored.ID, resource, filename, payload)
		}
		if err != nil {
			return nil, fmt.Errorf("resource upsert %s/%s failed: %w", plan.Slug, format, err)
		}
		record.ResourceIDs[format] = uploaded.ID
		p.logger.Info("resource published",
			interfaces.F("slug", plan.Slug),
			interfaces.F("format", format),
			interfaces.F("resource_id", uploaded.ID))
	}

	return record, nil
}

func (p *ResourcePublisher) resourcePayload(format, base string, fc *geojson.FeatureCollection, raw []byte) (payload []byte, filename, mimetype string, err error) {
	switch strings.ToUpper(format) {
	case "GEOJSON":
		return raw, base + ".geojson", "application/geo+json", nil
	case "CSV":
		data, err := p.tabular.Export(fc)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".csv", "text/csv", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported resource format %q", format)
	}
}

// titleCase upper-cases the first letter of a normalized city key
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// BuildDatasetMetadata assembles the dataset record for one plan: title,
// validation summary, tags, and the extras that carry publish state
func (p *ResourcePublisher) BuildDatasetMetadata(plan *entities.PublishPlan, report *entities.ValidationReport) *gateways.Dataset {
	file := report.File
	cityTitle := titleCase(file.CityName)

	notes := fmt.Sprintf(`Geographic data for pilot %s in %s.

Validation summary:
- Validation status: %s
- Checks passed: %d/%d
- File size: %.1f KB
- Validated: %s

Coordinates are geographic WGS84 degrees.`,
		file.PilotID, cityTitle,
		report.Status,
		report.PassedChecks, report.TotalChecks,
		float64(file.SizeBytes)/1024,
		report.Timestamp.Format(time.RFC3339))

	return &gateways.Dataset{
		Name:  plan.Slug,
		Title: fmt.Sprintf("Pilot %s - %s Living Lab Data", file.PilotID, cityTitle),
		Notes: notes,
		Tags: []string{
			"reallocate",
			"pilot-" + file.PilotID,
			file.CityName,
			"geojson",
			"geospatial",
			"living-labs",
			"urban-mobility",
			"transportation",
		},
		Extras: map[string]string{
			"pilot_number":      file.PilotID,
			"city_name":         file.CityName,
			"validation_status": string(report.Status),
			"original_filename": file.Name,
			"coordinate_system": "EPSG:4326",
			ExtraContentHash:    plan.ContentHash,
			ExtraContentVersion: strconv.Itoa(plan.Version),
			"upload_date":       time.Now().Format(time.RFC3339),
		},
		Private:  p.cfg.PrivateDatasets,
		OwnerOrg: p.orgID,
	}
}
