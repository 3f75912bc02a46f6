// Package geo implements the pure point-in-polygon test used for containment
// resolution. It operates on paulmach/orb geometry types with coordinates in
// (longitude, latitude) order and has no side effects, so it is safe to call
// concurrently.
package geo

import (
	"math"

	"geofence/internal/errors"

	"github.com/paulmach/orb"
)

// ErrDegenerateGeometry is returned when a ring has fewer than 3 distinct
// vertices and therefore encloses no region. Callers skip such areas rather
// than failing the whole resolution.
var ErrDegenerateGeometry = errors.New("polygon ring has fewer than 3 distinct vertices")

// ValidPoint reports whether p carries finite coordinates within the valid
// longitude [-180, 180] and latitude [-90, 90] ranges.
func ValidPoint(p orb.Point) bool {
	lon, lat := p[0], p[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}

	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// PointInPolygon reports whether p lies inside poly: inside the outer ring and
// inside none of the hole rings. It returns ErrDegenerateGeometry when any
// ring of the polygon has fewer than 3 distinct vertices.
//
// Points exactly on a ring edge may resolve either way; the result is
// consistent for a given input but not guaranteed stable across
// equivalent-but-reordered rings.
func PointInPolygon(p orb.Point, poly orb.Polygon) (bool, error) {
	if len(poly) == 0 {
		return false, errors.Wrap(ErrDegenerateGeometry, "polygon has no rings")
	}

	for _, ring := range poly {
		if err := validateRing(ring); err != nil {
			return false, err
		}
	}

	if !pointInRing(p, poly[0]) {
		return false, nil
	}

	// Inside the outer ring; any hole containing the point excludes it.
	for _, hole := range poly[1:] {
		if pointInRing(p, hole) {
			return false, nil
		}
	}

	return true, nil
}

// PointInMultiPolygon reports whether p lies inside any constituent polygon of
// mp. Constituents are validated as they are tested, so a degenerate polygon
// reached before a match surfaces as ErrDegenerateGeometry.
func PointInMultiPolygon(p orb.Point, mp orb.MultiPolygon) (bool, error) {
	if len(mp) == 0 {
		return false, errors.Wrap(ErrDegenerateGeometry, "multipolygon has no polygons")
	}

	for _, poly := range mp {
		inside, err := PointInPolygon(p, poly)
		if err != nil {
			return false, err
		}
		if inside {
			return true, nil
		}
	}

	return false, nil
}

// ValidateMultiPolygon checks every ring of every constituent polygon without
// evaluating any point. Used when areas are created or updated so malformed
// geometry is rejected at the boundary instead of being skipped at resolution
// time.
func ValidateMultiPolygon(mp orb.MultiPolygon) error {
	if len(mp) == 0 {
		return errors.Wrap(ErrDegenerateGeometry, "multipolygon has no polygons")
	}

	for _, poly := range mp {
		if len(poly) == 0 {
			return errors.Wrap(ErrDegenerateGeometry, "polygon has no rings")
		}
		for _, ring := range poly {
			if err := validateRing(ring); err != nil {
				return err
			}
		}
	}

	return nil
}

// pointInRing implements the crossing-number (ray casting) test: a horizontal
// ray from p toward +longitude crosses an edge when p's latitude lies in the
// half-open latitude interval of the edge and the edge's longitude at that
// latitude exceeds p's longitude. The half-open interval keeps shared vertices
// from being counted twice.
func pointInRing(p orb.Point, ring orb.Ring) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi[1] > p[1]) != (vj[1] > p[1]) &&
			p[0] < (vj[0]-vi[0])*(p[1]-vi[1])/(vj[1]-vi[1])+vi[0] {
			inside = !inside
		}
	}

	return inside
}

// validateRing rejects rings that enclose no region. The closing vertex of a
// closed ring does not count as distinct.
func validateRing(ring orb.Ring) error {
	distinct := make(map[orb.Point]struct{}, len(ring))
	for _, v := range ring {
		distinct[v] = struct{}{}
	}

	if len(distinct) < 3 {
		return ErrDegenerateGeometry
	}

	return nil
}
