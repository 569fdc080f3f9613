package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
)

// QualityValidator checks coordinate precision, geometry validity,
// macro-region containment, and size bounds. It must only run on documents
// whose structural checks all passed.
type QualityValidator struct {
	cfg entities.ValidationConfig
}

// NewQualityValidator creates a quality validator with the given tunables
func NewQualityValidator(cfg entities.ValidationConfig) *QualityValidator {
	return &QualityValidator{cfg: cfg}
}

// Validate runs all quality checks. Each check is independent given valid
// structure.
func (v *QualityValidator) Validate(file entities.SpatialFile, fc *geojson.FeatureCollection) []entities.Check {
	checks := make([]entities.Check, 0, 6)
	checks = append(checks, v.checkFileSize(file))
	checks = append(checks, v.checkFeatureCount(fc))
	checks = append(checks, v.checkEmptyGeometries(fc))
	checks = append(checks, v.checkPrecision(fc))
	checks = append(checks, v.checkGeometryValidity(fc))
	checks = append(checks, v.checkMacroRegionBounds(fc))
	return checks
}

// GeometriesValid reports whether the geometry-validity check in a slice
// passed; an invalid geometry has no defined area to intersect, so it also
// blocks the geographic check.
func GeometriesValid(checks []entities.Check) bool {
	for _, c := range checks {
		if c.Name == "geometry-validity" {
			return c.Status == entities.CheckPass
		}
	}
	return false
}

func (v *QualityValidator) checkFileSize(file entities.SpatialFile) entities.Check {
	maxBytes := int64(v.cfg.MaxFileSizeMB) * 1024 * 1024
	if file.SizeBytes == 0 {
		return entities.Check{
			Name:     "file-size",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message:  "file is empty",
		}
	}
	if file.SizeBytes > maxBytes {
		return entities.Check{
			Name:     "file-size",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message: fmt.Sprintf("file too large: %.2fMB > %dMB",
				float64(file.SizeBytes)/(1024*1024), v.cfg.MaxFileSizeMB),
		}
	}
	return entities.Check{
		Name:     "file-size",
		Category: entities.CategoryQuality,
		Status:   entities.CheckPass,
		Message:  fmt.Sprintf("file size OK: %.1fKB", float64(file.SizeBytes)/1024),
	}
}

func (v *QualityValidator) checkFeatureCount(fc *geojson.FeatureCollection) entities.Check {
	count := len(fc.Features)
	if count < v.cfg.MinFeatureCount {
		return entities.Check{
			Name:     "feature-count",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("too few features: %d < %d", count, v.cfg.MinFeatureCount),
		}
	}
	if count > v.cfg.MaxFeatureCount {
		return entities.Check{
			Name:     "feature-count",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("too many features: %d > %d", count, v.cfg.MaxFeatureCount),
		}
	}
	return entities.Check{
		Name:     "feature-count",
		Category: entities.CategoryQuality,
		Status:   entities.CheckPass,
		Message:  fmt.Sprintf("feature count OK: %d", count),
	}
}

func (v *QualityValidator) checkEmptyGeometries(fc *geojson.FeatureCollection) entities.Check {
	empty := 0
	for _, feat := range fc.Features {
		if feat.Geometry == nil || countCoords(feat.Geometry) == 0 {
			empty++
		}
	}
	if empty > 0 {
		return entities.Check{
			Name:     "empty-geometries",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("%d features have empty geometry", empty),
		}
	}
	return entities.Check{
		Name:     "empty-geometries",
		Category: entities.CategoryQuality,
		Status:   entities.CheckPass,
		Message:  "no empty geometries",
	}
}

// checkPrecision counts decimal digits over a bounded coordinate sample.
// Too few digits indicates truncation; too many indicates spurious
// precision.
func (v *QualityValidator) checkPrecision(fc *geojson.FeatureCollection) entities.Check {
	sampled := 0
	maxPrecision := 0
	for _, feat := range fc.Features {
		if feat.Geometry == nil || sampled >= v.cfg.CoordinateSample {
			continue
		}
		walkCoords(feat.Geometry, func(p orb.Point) bool {
			for _, c := range []float64{p[0], p[1]} {
				if d := decimalDigits(c); d > maxPrecision {
					maxPrecision = d
				}
			}
			sampled++
			return sampled < v.cfg.CoordinateSample
		})
	}

	if sampled == 0 {
		return entities.Check{
			Name:     "coordinate-precision",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message:  "no coordinates to sample",
		}
	}
	if maxPrecision < v.cfg.PrecisionMin {
		return entities.Check{
			Name:     "coordinate-precision",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message: fmt.Sprintf("max precision %d below %d decimal digits, coordinates look truncated",
				maxPrecision, v.cfg.PrecisionMin),
		}
	}
	if maxPrecision > v.cfg.PrecisionMax {
		return entities.Check{
			Name:     "coordinate-precision",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message: fmt.Sprintf("max precision %d above %d decimal digits, spurious precision",
				maxPrecision, v.cfg.PrecisionMax),
		}
	}
	return entities.Check{
		Name:     "coordinate-precision",
		Category: entities.CategoryQuality,
		Status:   entities.CheckPass,
		Message:  fmt.Sprintf("max precision %d digits over %d sampled coordinates", maxPrecision, sampled),
	}
}

// decimalDigits counts digits after the decimal point in the shortest
// representation that round-trips the float
func decimalDigits(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func (v *QualityValidator) checkGeometryValidity(fc *geojson.FeatureCollection) entities.Check {
	invalid := 0
	var firstErr error
	for _, feat := range fc.Features {
		if feat.Geometry == nil {
			continue
		}
		if err := validateGeometry(feat.Geometry); err != nil {
			invalid++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if invalid > 0 {
		return entities.Check{
			Name:     "geometry-validity",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message:  fmt.Sprintf("%d invalid geometries, first: %v", invalid, firstErr),
		}
	}
	return entities.Check{
		Name:     "geometry-validity",
		Category: entities.CategoryQuality,
		Status:   entities.CheckPass,
		Message:  "all geometries are valid",
	}
}

func (v *QualityValidator) checkMacroRegionBounds(fc *geojson.FeatureCollection) entities.Check {
	bounds := v.cfg.MacroRegionBounds
	var outside *orb.Point
	for _, feat := range fc.Features {
		if feat.Geometry == nil || outside != nil {
			continue
		}
		walkCoords(feat.Geometry, func(p orb.Point) bool {
			if !bounds.Contains(p[0], p[1]) {
				pt := p
				outside = &pt
				return false
			}
			return true
		})
	}
	if outside != nil {
		return entities.Check{
			Name:     "macro-region-bounds",
			Category: entities.CategoryQuality,
			Status:   entities.CheckFail,
			Message: fmt.Sprintf("coordinate (%.6f, %.6f) outside region [%g, %g] x [%g, %g]",
				outside[0], outside[1], bounds.MinLon, bounds.MaxLon, bounds.MinLat, bounds.MaxLat),
		}
	}
	return entities.Check{
		Name:     "macro-region-bounds",
		Category: entities.CategoryQuality,
		Status:   entities.CheckPass,
		Message:  "all coordinates within the configured region",
	}
}
