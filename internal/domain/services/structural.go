package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
)

// StructuralValidator confirms a file parses as a GeoJSON feature collection
// and is internally well-formed. Pure function of the input bytes.
type StructuralValidator struct{}

// NewStructuralValidator creates a new structural validator
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// rawDocument mirrors the top-level GeoJSON fields needed for schema checks
type rawDocument struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
	CRS      *rawCRS           `json:"crs"`
}

type rawCRS struct {
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type rawFeature struct {
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// Validate runs all structural checks against the raw bytes. The parsed
// feature collection is returned when the document is usable downstream;
// it is nil whenever any check that guards parsing failed.
func (v *StructuralValidator) Validate(file entities.SpatialFile, raw []byte) ([]entities.Check, *geojson.FeatureCollection) {
	checks := make([]entities.Check, 0, 6)

	if file.HasIdentity() {
		checks = append(checks, entities.Check{
			Name:     "filename-convention",
			Category: entities.CategoryStructural,
			Status:   entities.CheckPass,
			Message:  fmt.Sprintf("pilot %s, city %s", file.PilotID, file.CityName),
		})
	} else {
		checks = append(checks, entities.Check{
			Name:     "filename-convention",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("%s does not follow pilot<N>_<city>.geojson", file.Name),
		})
	}

	var doc rawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		checks = append(checks, entities.Check{
			Name:     "json-validity",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("invalid JSON: %v", err),
		})
		return checks, nil
	}
	checks = append(checks, entities.Check{
		Name:     "json-validity",
		Category: entities.CategoryStructural,
		Status:   entities.CheckPass,
		Message:  "valid JSON document",
	})

	if doc.Type != "FeatureCollection" {
		checks = append(checks, entities.Check{
			Name:     "feature-collection-type",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("declared type %q, expected FeatureCollection", doc.Type),
		})
		return checks, nil
	}
	checks = append(checks, entities.Check{
		Name:     "feature-collection-type",
		Category: entities.CategoryStructural,
		Status:   entities.CheckPass,
		Message:  "declared type is FeatureCollection",
	})

	// An empty collection carries no publishable data, so it blocks here
	// rather than rely on the advisory feature-count range check.
	if len(doc.Features) == 0 {
		checks = append(checks, entities.Check{
			Name:     "non-empty-collection",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  "feature collection has no features",
		})
	} else {
		checks = append(checks, entities.Check{
			Name:     "non-empty-collection",
			Category: entities.CategoryStructural,
			Status:   entities.CheckPass,
			Message:  fmt.Sprintf("collection has %d features", len(doc.Features)),
		})
	}

	missingGeometry := 0
	missingProperties := 0
	for _, rawFeat := range doc.Features {
		var feat rawFeature
		if err := json.Unmarshal(rawFeat, &feat); err != nil {
			missingGeometry++
			missingProperties++
			continue
		}
		if len(feat.Geometry) == 0 || string(feat.Geometry) == "null" {
			missingGeometry++
		}
		if len(feat.Properties) == 0 || string(feat.Properties) == "null" {
			missingProperties++
		}
	}

	if missingGeometry > 0 {
		checks = append(checks, entities.Check{
			Name:     "features-have-geometry",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("%d of %d features have no geometry", missingGeometry, len(doc.Features)),
		})
	} else {
		checks = append(checks, entities.Check{
			Name:     "features-have-geometry",
			Category: entities.CategoryStructural,
			Status:   entities.CheckPass,
			Message:  fmt.Sprintf("all %d features have a geometry", len(doc.Features)),
		})
	}

	if missingProperties > 0 {
		checks = append(checks, entities.Check{
			Name:     "features-have-properties",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("%d of %d features have no property mapping", missingProperties, len(doc.Features)),
		})
	} else {
		checks = append(checks, entities.Check{
			Name:     "features-have-properties",
			Category: entities.CategoryStructural,
			Status:   entities.CheckPass,
			Message:  fmt.Sprintf("all %d features have properties", len(doc.Features)),
		})
	}

	checks = append(checks, v.checkCRS(doc.CRS))

	if missingGeometry > 0 {
		// geometry decoding below would fault on null geometries
		return checks, nil
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		checks = append(checks, entities.Check{
			Name:     "geometry-decoding",
			Category: entities.CategoryStructural,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("geometry decoding failed: %v", err),
		})
		return checks, nil
	}

	return checks, fc
}

// checkCRS flags non-geographic coordinate reference systems. GeoJSON after
// RFC 7946 drops the crs member entirely; absence means WGS84.
func (v *StructuralValidator) checkCRS(crs *rawCRS) entities.Check {
	if crs == nil {
		return entities.Check{
			Name:     "coordinate-reference-system",
			Category: entities.CategoryStructural,
			Status:   entities.CheckWarning,
			Message:  "no CRS declared, WGS84 assumed",
		}
	}
	name := crs.Properties.Name
	if strings.Contains(name, "4326") || strings.Contains(name, "CRS84") {
		return entities.Check{
			Name:     "coordinate-reference-system",
			Category: entities.CategoryStructural,
			Status:   entities.CheckPass,
			Message:  fmt.Sprintf("geographic CRS declared: %s", name),
		}
	}
	return entities.Check{
		Name:     "coordinate-reference-system",
		Category: entities.CategoryStructural,
		Status:   entities.CheckFail,
		Message:  fmt.Sprintf("non-geographic CRS declared: %s", name),
	}
}

// AllPassed reports whether every check in the slice passed (warnings count
// as passed)
func AllPassed(checks []entities.Check) bool {
	for _, c := range checks {
		if !c.Passed() {
			return false
		}
	}
	return true
}
