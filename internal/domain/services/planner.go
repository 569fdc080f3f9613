package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
)

// Dataset extras keys carrying publish state in the catalog
const (
	ExtraContentHash    = "content_hash"
	ExtraContentVersion = "content_version"
)

// PublishPlanner decides create/update/skip per validated file from the
// catalog's current state and computes the content version
type PublishPlanner struct {
	prefix             string
	onlyPublishPassing bool
}

// NewPublishPlanner creates a planner with the configured publish policy
func NewPublishPlanner(cfg entities.PublishConfig) *PublishPlanner {
	return &PublishPlanner{
		prefix:             cfg.DatasetPrefix,
		onlyPublishPassing: cfg.OnlyPublishPassing,
	}
}

// Slug derives the URL-safe dataset identifier for a file
func (p *PublishPlanner) Slug(file entities.SpatialFile) string {
	return fmt.Sprintf("%s-%s-%s", p.prefix, file.PilotID, file.CityName)
}

// WillPublish reports whether Plan would go beyond an early skip for this
// report. Callers use it to decide whether catalog state needs to be read.
func (p *PublishPlanner) WillPublish(report *entities.ValidationReport) bool {
	return report.Status == entities.ReportPass || !p.onlyPublishPassing
}

// CanonicalContent re-marshals a parsed feature collection into a stable
// byte form: encoding/json sorts property keys and feature order is
// preserved, so cosmetic re-serialization of the source file maps to the
// same bytes.
func CanonicalContent(fc *geojson.FeatureCollection) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize feature collection: %w", err)
	}
	return data, nil
}

// ContentHash returns the hex SHA-256 of the canonical content
func ContentHash(fc *geojson.FeatureCollection) (string, error) {
	data, err := CanonicalContent(fc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Plan applies the decision table to one file. existing is the catalog's
// current dataset for the slug, or nil when none exists.
func (p *PublishPlanner) Plan(report *entities.ValidationReport, fc *geojson.FeatureCollection, existing *gateways.Dataset) (*entities.PublishPlan, error) {
	plan := &entities.PublishPlan{
		File: report.File,
		Slug: p.Slug(report.File),
	}

	if report.Status != entities.ReportPass && p.onlyPublishPassing {
		plan.Action = entities.ActionSkip
		plan.Reason = "validation failed and only passing files are published"
		return plan, nil
	}

	hash, err := ContentHash(fc)
	if err != nil {
		return nil, err
	}
	plan.ContentHash = hash

	if existing == nil {
		plan.Action = entities.ActionCreate
		plan.Reason = "no dataset exists for slug"
		plan.Version = 1
		return plan, nil
	}

	prevHash := existing.Extra(ExtraContentHash)
	prevVersion, _ := strconv.Atoi(existing.Extra(ExtraContentVersion))
	if prevVersion < 1 {
		prevVersion = 1
	}

	if prevHash == hash {
		plan.Action = entities.ActionSkip
		plan.Reason = "content unchanged, already current"
		plan.Version = prevVersion
		return plan, nil
	}

	plan.Action = entities.ActionUpdate
	plan.Reason = "content hash changed"
	plan.Version = prevVersion + 1
	return plan, nil
}
