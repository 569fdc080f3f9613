package services

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestValidateGeometry(t *testing.T) {
	tests := []struct {
		name    string
		geom    orb.Geometry
		wantErr bool
	}{
		{"point", orb.Point{2.1, 41.4}, false},
		{"two point line", orb.LineString{{2.1, 41.4}, {2.2, 41.5}}, false},
		{"single point line", orb.LineString{{2.1, 41.4}}, true},
		{"closed square", squareAround(2.15, 41.4, 0.05), false},
		{
			"unclosed ring",
			orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
			true,
		},
		{
			"triangle too small",
			orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {0, 0}}},
			true,
		},
		{
			"zero area ring",
			orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {2, 0}, {0, 0}}},
			true,
		},
		{
			"self intersecting ring",
			orb.Polygon{orb.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}},
			true,
		},
		{
			"multipolygon with one bad member",
			orb.MultiPolygon{
				squareAround(0, 0, 1),
				{orb.Ring{{5, 5}, {6, 5}, {7, 5}, {5, 5}}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGeometry(tt.geom)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGeometry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, p3, p4 orb.Point
		want           bool
	}{
		{
			name: "crossing diagonals",
			p1:   orb.Point{0, 0}, p2: orb.Point{2, 2},
			p3: orb.Point{0, 2}, p4: orb.Point{2, 0},
			want: true,
		},
		{
			name: "parallel segments",
			p1:   orb.Point{0, 0}, p2: orb.Point{2, 0},
			p3: orb.Point{0, 1}, p4: orb.Point{2, 1},
			want: false,
		},
		{
			name: "collinear overlapping",
			p1:   orb.Point{0, 0}, p2: orb.Point{2, 0},
			p3: orb.Point{1, 0}, p4: orb.Point{3, 0},
			want: true,
		},
		{
			name: "collinear disjoint",
			p1:   orb.Point{0, 0}, p2: orb.Point{1, 0},
			p3: orb.Point{2, 0}, p4: orb.Point{3, 0},
			want: false,
		},
		{
			name: "touching at endpoint",
			p1:   orb.Point{0, 0}, p2: orb.Point{1, 1},
			p3: orb.Point{1, 1}, p4: orb.Point{2, 0},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentsIntersect(tt.p1, tt.p2, tt.p3, tt.p4); got != tt.want {
				t.Errorf("segmentsIntersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeometryIntersects(t *testing.T) {
	boundary := squareAround(2.15, 41.4, 0.1)

	tests := []struct {
		name string
		geom orb.Geometry
		want bool
	}{
		{"point inside", orb.Point{2.15, 41.4}, true},
		{"point outside", orb.Point{5.0, 45.0}, false},
		{"polygon fully inside", squareAround(2.15, 41.4, 0.01), true},
		{"polygon straddling the edge", squareAround(2.25, 41.4, 0.02), true},
		{"polygon fully outside", squareAround(3.0, 41.4, 0.01), false},
		{"polygon containing the boundary", squareAround(2.15, 41.4, 1.0), true},
		{
			"line crossing through",
			orb.LineString{{2.0, 41.4}, {2.3, 41.4}},
			true,
		},
		{
			"line passing beside",
			orb.LineString{{2.0, 42.0}, {2.3, 42.0}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geometryIntersects(tt.geom, boundary); got != tt.want {
				t.Errorf("geometryIntersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeometryIntersectsMultiPolygonBoundary(t *testing.T) {
	boundary := orb.MultiPolygon{
		squareAround(2.15, 41.4, 0.05),
		squareAround(2.5, 41.4, 0.05),
	}

	if !geometryIntersects(orb.Point{2.5, 41.4}, boundary) {
		t.Error("point in second member should intersect")
	}
	if geometryIntersects(orb.Point{2.3, 41.4}, boundary) {
		t.Error("point between members should not intersect")
	}
}
