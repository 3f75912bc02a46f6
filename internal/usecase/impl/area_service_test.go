package impl

import (
	"context"
	"testing"

	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSquare() orb.Polygon {
	return orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
	}
}

func TestAddAreaNormalizesPolygon(t *testing.T) {
	areaRepo := &mockAreaRepo{}
	svc := NewAreaService(areaRepo)

	area, err := svc.AddArea(context.Background(), &usecase.AddAreaInput{
		Name:     "campus",
		Geometry: validSquare(),
	})
	require.NoError(t, err)

	require.Len(t, area.Geometry, 1)
	assert.Equal(t, entity.AreaStatusActive, area.Status)
	assert.Equal(t, entity.AlertTypeStandard, area.AlertType)
	assert.NotEqual(t, uuid.Nil, area.ID)
}

func TestAddAreaAcceptsMultiPolygon(t *testing.T) {
	svc := NewAreaService(&mockAreaRepo{})

	area, err := svc.AddArea(context.Background(), &usecase.AddAreaInput{
		Name: "twin squares",
		Geometry: orb.MultiPolygon{
			validSquare(),
			{{{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20}}},
		},
	})
	require.NoError(t, err)
	assert.Len(t, area.Geometry, 2)
}

func TestAddAreaRejectsNonPolygonGeometry(t *testing.T) {
	svc := NewAreaService(&mockAreaRepo{})

	_, err := svc.AddArea(context.Background(), &usecase.AddAreaInput{
		Name:     "bad",
		Geometry: orb.Point{1, 1},
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrInvalidGeometry.ErrorCode(), appErr.ErrorCode())
}

func TestAddAreaRejectsDegenerateRing(t *testing.T) {
	svc := NewAreaService(&mockAreaRepo{})

	_, err := svc.AddArea(context.Background(), &usecase.AddAreaInput{
		Name:     "degenerate",
		Geometry: orb.Polygon{{{0, 0}, {0, 0}, {0, 0}}},
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrInvalidGeometry.ErrorCode(), appErr.ErrorCode())
}

func TestUpdateAreaPartialFields(t *testing.T) {
	areaRepo := &mockAreaRepo{}
	svc := NewAreaService(areaRepo)

	created, err := svc.AddArea(context.Background(), &usecase.AddAreaInput{
		Name:     "before",
		Geometry: validSquare(),
	})
	require.NoError(t, err)

	newName := "after"
	newStatus := entity.AreaStatusInactive
	updated, err := svc.UpdateArea(context.Background(), created.ID, &usecase.UpdateAreaInput{
		Name:   &newName,
		Status: &newStatus,
	})
	require.NoError(t, err)

	assert.Equal(t, "after", updated.Name)
	assert.Equal(t, entity.AreaStatusInactive, updated.Status)
	// Untouched fields survive the partial update.
	assert.Equal(t, created.Geometry, updated.Geometry)
	assert.Equal(t, created.AlertType, updated.AlertType)
}

func TestUpdateAreaRejectsBadGeometry(t *testing.T) {
	svc := NewAreaService(&mockAreaRepo{})

	created, err := svc.AddArea(context.Background(), &usecase.AddAreaInput{
		Name:     "campus",
		Geometry: validSquare(),
	})
	require.NoError(t, err)

	_, err = svc.UpdateArea(context.Background(), created.ID, &usecase.UpdateAreaInput{
		Geometry: orb.LineString{{0, 0}, {1, 1}},
	})
	require.Error(t, err)
}

func TestDeleteAreaNotFound(t *testing.T) {
	svc := NewAreaService(&mockAreaRepo{})

	err := svc.DeleteArea(context.Background(), uuid.New())
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrAreaNotFound.ErrorCode(), appErr.ErrorCode())
}
