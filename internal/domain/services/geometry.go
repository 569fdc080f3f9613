package services

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// walkCoords visits every coordinate of a geometry until fn returns false
func walkCoords(g orb.Geometry, fn func(orb.Point) bool) bool {
	switch geom := g.(type) {
	case orb.Point:
		return fn(geom)
	case orb.MultiPoint:
		for _, p := range geom {
			if !fn(p) {
				return false
			}
		}
	case orb.LineString:
		for _, p := range geom {
			if !fn(p) {
				return false
			}
		}
	case orb.MultiLineString:
		for _, ls := range geom {
			if !walkCoords(ls, fn) {
				return false
			}
		}
	case orb.Ring:
		for _, p := range geom {
			if !fn(p) {
				return false
			}
		}
	case orb.Polygon:
		for _, ring := range geom {
			if !walkCoords(ring, fn) {
				return false
			}
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			if !walkCoords(poly, fn) {
				return false
			}
		}
	case orb.Collection:
		for _, child := range geom {
			if !walkCoords(child, fn) {
				return false
			}
		}
	case orb.Bound:
		return walkCoords(geom.ToPolygon(), fn)
	}
	return true
}

// countCoords returns the total number of coordinates in a geometry
func countCoords(g orb.Geometry) int {
	n := 0
	walkCoords(g, func(orb.Point) bool {
		n++
		return true
	})
	return n
}

// validateGeometry applies the topological validity predicate: rings must
// be closed, have at least four points, enclose a non-zero area, and be free
// of self-intersections. Lines need at least two points.
func validateGeometry(g orb.Geometry) error {
	switch geom := g.(type) {
	case orb.Point, orb.MultiPoint:
		return nil
	case orb.LineString:
		if len(geom) < 2 {
			return fmt.Errorf("line string has %d points, need at least 2", len(geom))
		}
		return nil
	case orb.MultiLineString:
		for i, ls := range geom {
			if err := validateGeometry(ls); err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
		}
		return nil
	case orb.Polygon:
		for i, ring := range geom {
			if err := validateRing(ring); err != nil {
				return fmt.Errorf("ring %d: %w", i, err)
			}
		}
		return nil
	case orb.MultiPolygon:
		for i, poly := range geom {
			if err := validateGeometry(poly); err != nil {
				return fmt.Errorf("polygon %d: %w", i, err)
			}
		}
		return nil
	case orb.Collection:
		for i, child := range geom {
			if err := validateGeometry(child); err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
		}
		return nil
	default:
		return nil
	}
}

func validateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return fmt.Errorf("degenerate ring with %d points", len(ring))
	}
	if !ring.Closed() {
		return fmt.Errorf("ring is not closed")
	}
	if planar.Area(ring) == 0 {
		return fmt.Errorf("ring encloses zero area")
	}

	// Pairwise segment test, skipping adjacent segments which always share
	// an endpoint.
	n := len(ring) - 1
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // first and last segment share the closing point
			}
			if segmentsIntersect(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return fmt.Errorf("self-intersection between segments %d and %d", i, j)
			}
		}
	}
	return nil
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 intersect,
// including collinear overlap
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return min(a[0], b[0]) <= p[0] && p[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= p[1] && p[1] <= max(a[1], b[1])
}

// geometryIntersects reports whether the two geometries share any point.
// Planar test in degree space; adequate for the city-scale sanity check.
func geometryIntersects(a, b orb.Geometry) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}

	// Any coordinate of one geometry inside the other is an intersection.
	inside := false
	walkCoords(a, func(p orb.Point) bool {
		if containsPoint(b, p) {
			inside = true
			return false
		}
		return true
	})
	if inside {
		return true
	}
	walkCoords(b, func(p orb.Point) bool {
		if containsPoint(a, p) {
			inside = true
			return false
		}
		return true
	})
	if inside {
		return true
	}

	// Otherwise boundaries may still cross without containing a vertex.
	segA := collectSegments(a)
	segB := collectSegments(b)
	for _, sa := range segA {
		for _, sb := range segB {
			if segmentsIntersect(sa[0], sa[1], sb[0], sb[1]) {
				return true
			}
		}
	}
	return false
}

// containsPoint tests point-in-geometry for areal geometries
func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	case orb.Bound:
		return geom.Contains(p)
	case orb.Collection:
		for _, child := range geom {
			if containsPoint(child, p) {
				return true
			}
		}
	}
	return false
}

// collectSegments flattens a geometry's edges into point pairs
func collectSegments(g orb.Geometry) [][2]orb.Point {
	var segs [][2]orb.Point
	appendLine := func(pts []orb.Point) {
		for i := 0; i+1 < len(pts); i++ {
			segs = append(segs, [2]orb.Point{pts[i], pts[i+1]})
		}
	}
	switch geom := g.(type) {
	case orb.LineString:
		appendLine(geom)
	case orb.MultiLineString:
		for _, ls := range geom {
			appendLine(ls)
		}
	case orb.Ring:
		appendLine(geom)
	case orb.Polygon:
		for _, ring := range geom {
			appendLine(ring)
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			segs = append(segs, collectSegments(poly)...)
		}
	case orb.Collection:
		for _, child := range geom {
			segs = append(segs, collectSegments(child)...)
		}
	case orb.Bound:
		segs = append(segs, collectSegments(geom.ToPolygon())...)
	}
	return segs
}
