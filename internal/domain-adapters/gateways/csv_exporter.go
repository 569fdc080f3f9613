package gateways

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Derived columns appended after the property columns
var derivedColumns = []string{
	"geometry_type",
	"longitude",
	"latitude",
	"area",
	"min_x",
	"min_y",
	"max_x",
	"max_y",
}

// CSVExporter flattens a feature collection into tabular form for catalog
// consumers that cannot read spatial formats. Columns are the union of all
// feature property keys in sorted order, followed by derived geometry
// columns.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export renders the collection as CSV, one row per feature
func (e *CSVExporter) Export(fc *geojson.FeatureCollection) ([]byte, error) {
	keys := propertyColumns(fc)
	header := append(append([]string{}, keys...), derivedColumns...)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, feature := range fc.Features {
		row := make([]string, 0, len(header))
		for _, key := range keys {
			row = append(row, formatPropertyValue(feature.Properties[key]))
		}
		row = append(row, derivedValues(feature)...)
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv output: %w", err)
	}
	return buf.Bytes(), nil
}

func propertyColumns(fc *geojson.FeatureCollection) []string {
	seen := make(map[string]struct{})
	for _, feature := range fc.Features {
		for key := range feature.Properties {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func derivedValues(feature *geojson.Feature) []string {
	if feature.Geometry == nil {
		return []string{"", "", "", "", "", "", "", ""}
	}
	centroid, area := planar.CentroidArea(feature.Geometry)
	bound := feature.Geometry.Bound()
	return []string{
		feature.Geometry.GeoJSONType(),
		formatCoord(centroid[0]),
		formatCoord(centroid[1]),
		formatCoord(area),
		formatCoord(bound.Min[0]),
		formatCoord(bound.Min[1]),
		formatCoord(bound.Max[0]),
		formatCoord(bound.Max[1]),
	}
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPropertyValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		// Nested objects and arrays keep their JSON shape
		return fmt.Sprintf("%v", value)
	}
}
