package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareRing() orb.Ring {
	return orb.Ring{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}, {-1, -1}}
}

func TestPointInPolygon_Square(t *testing.T) {
	poly := orb.Polygon{squareRing()}

	tests := []struct {
		name  string
		point orb.Point
		want  bool
	}{
		{name: "center inside", point: orb.Point{0, 0}, want: true},
		{name: "far outside", point: orb.Point{5, 5}, want: false},
		{name: "near corner inside", point: orb.Point{0.9, 0.9}, want: true},
		{name: "just outside east edge", point: orb.Point{1.0001, 0}, want: false},
		{name: "just outside south edge", point: orb.Point{0, -1.0001}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointInPolygon(tt.point, poly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointInPolygon_OpenRing(t *testing.T) {
	// Ring without the explicit closing vertex is treated as implicitly closed.
	poly := orb.Polygon{{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}}

	inside, err := PointInPolygon(orb.Point{0, 0}, poly)
	require.NoError(t, err)
	assert.True(t, inside)

	inside, err = PointInPolygon(orb.Point{2, 0}, poly)
	require.NoError(t, err)
	assert.False(t, inside)
}

func TestPointInPolygon_Hole(t *testing.T) {
	outer := orb.Ring{{-10, -10}, {-10, 10}, {10, 10}, {10, -10}, {-10, -10}}
	hole := orb.Ring{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}, {-1, -1}}
	poly := orb.Polygon{outer, hole}

	inHole, err := PointInPolygon(orb.Point{0, 0}, poly)
	require.NoError(t, err)
	assert.False(t, inHole, "point inside a hole is not contained")

	inRim, err := PointInPolygon(orb.Point{5, 5}, poly)
	require.NoError(t, err)
	assert.True(t, inRim, "point between hole and outer ring is contained")

	outside, err := PointInPolygon(orb.Point{15, 0}, poly)
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestPointInPolygon_ConcaveRing(t *testing.T) {
	// U-shaped ring; the notch between the arms is outside.
	ring := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {3, 4}, {3, 1}, {1, 1}, {1, 4}, {0, 4}, {0, 0}}
	poly := orb.Polygon{ring}

	inArm, err := PointInPolygon(orb.Point{0.5, 3}, poly)
	require.NoError(t, err)
	assert.True(t, inArm)

	inNotch, err := PointInPolygon(orb.Point{2, 3}, poly)
	require.NoError(t, err)
	assert.False(t, inNotch)

	inBase, err := PointInPolygon(orb.Point{2, 0.5}, poly)
	require.NoError(t, err)
	assert.True(t, inBase)
}

func TestPointInMultiPolygon(t *testing.T) {
	west := orb.Polygon{{{-3, -1}, {-3, 1}, {-2, 1}, {-2, -1}, {-3, -1}}}
	east := orb.Polygon{{{2, -1}, {2, 1}, {3, 1}, {3, -1}, {2, -1}}}
	mp := orb.MultiPolygon{west, east}

	inEast, err := PointInMultiPolygon(orb.Point{2.5, 0}, mp)
	require.NoError(t, err)
	assert.True(t, inEast)

	inWest, err := PointInMultiPolygon(orb.Point{-2.5, 0}, mp)
	require.NoError(t, err)
	assert.True(t, inWest)

	between, err := PointInMultiPolygon(orb.Point{0, 0}, mp)
	require.NoError(t, err)
	assert.False(t, between)
}

func TestPointInPolygon_DegenerateRing(t *testing.T) {
	tests := []struct {
		name string
		poly orb.Polygon
	}{
		{name: "no rings", poly: orb.Polygon{}},
		{name: "empty ring", poly: orb.Polygon{{}}},
		{name: "two distinct vertices", poly: orb.Polygon{{{0, 0}, {1, 1}, {0, 0}}}},
		{name: "repeated single vertex", poly: orb.Polygon{{{2, 2}, {2, 2}, {2, 2}, {2, 2}}}},
		{name: "degenerate hole", poly: orb.Polygon{squareRing(), {{0, 0}, {0, 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PointInPolygon(orb.Point{0, 0}, tt.poly)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDegenerateGeometry)
		})
	}
}

func TestPointInMultiPolygon_Empty(t *testing.T) {
	_, err := PointInMultiPolygon(orb.Point{0, 0}, orb.MultiPolygon{})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestValidPoint(t *testing.T) {
	assert.True(t, ValidPoint(orb.Point{0, 0}))
	assert.True(t, ValidPoint(orb.Point{-180, 90}))
	assert.True(t, ValidPoint(orb.Point{180, -90}))
	assert.False(t, ValidPoint(orb.Point{181, 0}))
	assert.False(t, ValidPoint(orb.Point{0, -91}))
	assert.False(t, ValidPoint(orb.Point{math.NaN(), 0}))
	assert.False(t, ValidPoint(orb.Point{0, math.Inf(1)}))
}
