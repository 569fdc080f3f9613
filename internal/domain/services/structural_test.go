package services

import (
	"testing"
	"time"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
)

func namedFile(name string) entities.SpatialFile {
	file := entities.SpatialFile{Name: name, SizeBytes: 100}
	if pilot, city, ok := ParsePilotFilename(name); ok {
		file.PilotID = pilot
		file.CityName = city
	}
	return file
}

func checkByName(t *testing.T, checks []entities.Check, name string) entities.Check {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %v", name, checks)
	return entities.Check{}
}

const validDoc = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [2.154007, 41.390205]},
			"properties": {"name": "placa"}
		}
	]
}`

func TestStructuralValidateWellFormed(t *testing.T) {
	v := NewStructuralValidator()
	checks, fc := v.Validate(namedFile("pilot1_barcelona.geojson"), []byte(validDoc))

	if fc == nil {
		t.Fatal("expected a parsed feature collection")
	}
	if !AllPassed(checks) {
		t.Fatalf("expected all checks to pass, got %v", checks)
	}
	if got := checkByName(t, checks, "coordinate-reference-system"); got.Status != entities.CheckWarning {
		t.Errorf("absent CRS should warn, got %s", got.Status)
	}
	if len(fc.Features) != 1 {
		t.Errorf("parsed %d features, want 1", len(fc.Features))
	}
}

func TestStructuralValidateFailures(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		doc       string
		failCheck string
		wantFC    bool
	}{
		{
			name:      "invalid json",
			filename:  "pilot1_barcelona.geojson",
			doc:       `{"type": "FeatureCollection", "features": [`,
			failCheck: "json-validity",
		},
		{
			name:      "wrong top level type",
			filename:  "pilot1_barcelona.geojson",
			doc:       `{"type": "Feature", "geometry": null, "properties": {}}`,
			failCheck: "feature-collection-type",
		},
		{
			name:      "empty collection",
			filename:  "pilot1_barcelona.geojson",
			doc:       `{"type": "FeatureCollection", "features": []}`,
			failCheck: "non-empty-collection",
			wantFC:    true,
		},
		{
			name:     "null geometry",
			filename: "pilot1_barcelona.geojson",
			doc: `{"type": "FeatureCollection", "features": [
				{"type": "Feature", "geometry": null, "properties": {"a": 1}}
			]}`,
			failCheck: "features-have-geometry",
		},
		{
			name:     "missing properties",
			filename: "pilot1_barcelona.geojson",
			doc: `{"type": "FeatureCollection", "features": [
				{"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.1, 41.4]}}
			]}`,
			failCheck: "features-have-properties",
			wantFC:    true,
		},
		{
			name:      "bad filename",
			filename:  "areas.geojson",
			doc:       validDoc,
			failCheck: "filename-convention",
			wantFC:    true,
		},
		{
			name:     "projected crs",
			filename: "pilot1_barcelona.geojson",
			doc: `{"type": "FeatureCollection",
				"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3857"}},
				"features": [
					{"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.1, 41.4]}, "properties": {"a": 1}}
				]}`,
			failCheck: "coordinate-reference-system",
			wantFC:    true,
		},
	}

	v := NewStructuralValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks, fc := v.Validate(namedFile(tt.filename), []byte(tt.doc))
			if got := checkByName(t, checks, tt.failCheck); got.Status != entities.CheckFail {
				t.Errorf("check %s status = %s, want fail", tt.failCheck, got.Status)
			}
			if (fc != nil) != tt.wantFC {
				t.Errorf("feature collection present = %v, want %v", fc != nil, tt.wantFC)
			}
		})
	}
}

func TestEmptyCollectionFailsUnderAdvisoryPolicy(t *testing.T) {
	v := NewStructuralValidator()
	file := namedFile("pilot1_barcelona.geojson")
	checks, fc := v.Validate(file, []byte(`{"type": "FeatureCollection", "features": []}`))

	if fc == nil {
		t.Fatal("expected a parsed feature collection")
	}
	if got := checkByName(t, checks, "non-empty-collection"); got.Status != entities.CheckFail {
		t.Fatalf("non-empty-collection status = %s, want fail", got.Status)
	}

	// Quality failures are advisory under the default config; an empty
	// document must still fail overall through the structural check.
	builder := NewReportBuilder(entities.DefaultConfig().Validation)
	report := builder.Build(file, checks, time.Now())
	if report.Status != entities.ReportFail {
		t.Errorf("report status = %s, want %s", report.Status, entities.ReportFail)
	}
}

func TestStructuralValidateDeclaredWGS84(t *testing.T) {
	doc := `{"type": "FeatureCollection",
		"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:OGC:1.3:CRS84"}},
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.1, 41.4]}, "properties": {"a": 1}}
		]}`
	v := NewStructuralValidator()
	checks, _ := v.Validate(namedFile("pilot1_barcelona.geojson"), []byte(doc))
	if got := checkByName(t, checks, "coordinate-reference-system"); got.Status != entities.CheckPass {
		t.Errorf("CRS84 should pass, got %s: %s", got.Status, got.Message)
	}
}
