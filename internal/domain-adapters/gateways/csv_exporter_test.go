package gateways

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestCSVExport(t *testing.T) {
	fc := geojson.NewFeatureCollection()

	point := geojson.NewFeature(orb.Point{2.154007, 41.390205})
	point.Properties["name"] = "placa"
	point.Properties["capacity"] = 120.0
	fc.Append(point)

	square := geojson.NewFeature(orb.Polygon{orb.Ring{
		{2.0, 41.0}, {2.2, 41.0}, {2.2, 41.2}, {2.0, 41.2}, {2.0, 41.0},
	}})
	square.Properties["zone"] = "a"
	fc.Append(square)

	out, err := NewCSVExporter().Export(fc)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	header := rows[0]
	// Property columns sorted, derived columns after
	want := []string{"capacity", "name", "zone",
		"geometry_type", "longitude", "latitude", "area",
		"min_x", "min_y", "max_x", "max_y"}
	if len(header) != len(want) {
		t.Fatalf("header = %v", header)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}

	pointRow := rows[1]
	if pointRow[0] != "120" || pointRow[1] != "placa" || pointRow[2] != "" {
		t.Errorf("point row properties = %v", pointRow[:3])
	}
	if pointRow[3] != "Point" {
		t.Errorf("geometry_type = %q", pointRow[3])
	}
	if pointRow[4] != "2.154007" || pointRow[5] != "41.390205" {
		t.Errorf("point centroid = %v", pointRow[4:6])
	}

	squareRow := rows[2]
	if squareRow[3] != "Polygon" {
		t.Errorf("geometry_type = %q", squareRow[3])
	}
	if squareRow[7] != "2" || squareRow[8] != "41" {
		t.Errorf("polygon min corner = %v", squareRow[7:9])
	}
}

func TestCSVExportEmptyCollection(t *testing.T) {
	out, err := NewCSVExporter().Export(geojson.NewFeatureCollection())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}

func TestCSVExportNilGeometry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	feat := &geojson.Feature{Type: "Feature", Properties: geojson.Properties{"name": "empty"}}
	fc.Append(feat)

	out, err := NewCSVExporter().Export(fc)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][1] != "" {
		t.Errorf("geometry_type for nil geometry = %q, want empty", rows[1][1])
	}
}
