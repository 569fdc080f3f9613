package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	adapters "github.com/reallocate-eu/geoflow/internal/domain-adapters/gateways"
	orchestrators "github.com/reallocate-eu/geoflow/internal/domain-orchestrators"
	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
	"github.com/reallocate-eu/geoflow/internal/domain/services"
	"github.com/reallocate-eu/geoflow/internal/external-adapters/yaml"
)

// catalogCredentials are read from the environment (or a .env file)
type catalogCredentials struct {
	URL    string
	APIKey string
	OrgID  string
}

// loadCredentials reads catalog credentials, loading .env first when present
func loadCredentials() catalogCredentials {
	// Missing .env is fine, real environments set variables directly
	_ = godotenv.Load()
	return catalogCredentials{
		URL:    os.Getenv("CKAN_URL"),
		APIKey: os.Getenv("CKAN_API_KEY"),
		OrgID:  os.Getenv("CKAN_ORG_ID"),
	}
}

func (c catalogCredentials) complete() bool {
	return c.URL != "" && c.APIKey != ""
}

// loadConfig reads the YAML configuration or falls back to defaults
func loadConfig(path string) (*entities.Config, error) {
	if path == "" {
		return entities.DefaultConfig(), nil
	}
	return yaml.NewConfigParser().ParseFile(path)
}

// buildPipeline wires the workflow for the requested mode. The catalog
// gateway is only constructed when credentials are available; plan runs
// without credentials assume every dataset is new.
func buildPipeline(cfg *entities.Config, creds catalogCredentials, mode orchestrators.Mode, logger interfaces.Logger) (*orchestrators.WorkflowOrchestrator, error) {
	if mode == orchestrators.ModePublish && !creds.complete() {
		return nil, fmt.Errorf("publishing requires CKAN_URL and CKAN_API_KEY to be set")
	}

	boundaryGateway := adapters.NewHTTPNominatimGateway(
		os.Getenv("NOMINATIM_URL"),
		cfg.Validation.BoundaryTimeout,
		cfg.Validation.BoundaryRetry,
		logger,
	)
	resolver := services.NewBoundaryResolver(boundaryGateway, logger, services.BoundaryCacheConfig{
		TTL:        cfg.Validation.BoundaryTTL,
		MaxEntries: cfg.Validation.BoundaryMaxEntries,
	})

	var catalog gateways.CatalogGateway
	var publisher *services.ResourcePublisher
	if mode != orchestrators.ModeValidate && creds.complete() {
		catalog = adapters.NewHTTPCatalogGateway(creds.URL, creds.APIKey, cfg.Publish.RequestTimeout, cfg.Publish.Retry, logger)
		publisher = services.NewResourcePublisher(catalog, adapters.NewCSVExporter(), logger, cfg.Publish, creds.OrgID)
	}

	return orchestrators.NewWorkflowOrchestrator(
		services.NewDiscoveryService(logger),
		services.NewStructuralValidator(),
		services.NewQualityValidator(cfg.Validation),
		resolver,
		services.NewReportBuilder(cfg.Validation),
		services.NewPublishPlanner(cfg.Publish),
		publisher,
		catalog,
		logger,
		cfg,
	), nil
}
