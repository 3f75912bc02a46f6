// Package handler contains the echo handlers for the HTTP delivery.
package handler

import (
	"log/slog"
	"net/http"

	"geofence/internal/delivery/http/response"
	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AreaHandlerParams holds dependencies for AreaHandler, injected by Fx.
type AreaHandlerParams struct {
	fx.In

	AreaUC     usecase.AreaUsecase
	LocationUC usecase.LocationUsecase
	Logger     *slog.Logger
}

// AreaHandler holds dependencies for area-related handlers
type AreaHandler struct {
	areaUC     usecase.AreaUsecase
	locationUC usecase.LocationUsecase
	logger     *slog.Logger
}

// NewAreaHandler is the constructor for AreaHandler
func NewAreaHandler(params AreaHandlerParams) *AreaHandler {
	return &AreaHandler{
		areaUC:     params.AreaUC,
		locationUC: params.LocationUC,
		logger:     params.Logger,
	}
}

// CreateAreaRequest represents the request body for creating an area.
// Geometry is a GeoJSON Polygon or MultiPolygon in (longitude, latitude) order.
type CreateAreaRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Geometry    *geojson.Geometry `json:"geometry" validate:"required"`
	Status      string            `json:"status" validate:"omitempty,oneof=active inactive"`
	AlertType   string            `json:"alert_type" validate:"omitempty,oneof=info warning danger standard"`
	Properties  map[string]string `json:"properties"`
}

// UpdateAreaRequest represents the request body for updating an area
type UpdateAreaRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Geometry    *geojson.Geometry `json:"geometry,omitempty"`
	Status      *string           `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	AlertType   *string           `json:"alert_type,omitempty" validate:"omitempty,oneof=info warning danger standard"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// AreaResponse is the wire representation of an area, with the geometry
// serialized back to GeoJSON.
type AreaResponse struct {
	*entity.Area
	Geometry *geojson.Geometry `json:"geometry"`
}

func newAreaResponse(area *entity.Area) *AreaResponse {
	if area == nil {
		return nil
	}

	return &AreaResponse{
		Area:     area,
		Geometry: geojson.NewGeometry(area.Geometry),
	}
}

func newAreaResponseSlice(areas []*entity.Area) []*AreaResponse {
	out := make([]*AreaResponse, 0, len(areas))
	for _, area := range areas {
		out = append(out, newAreaResponse(area))
	}

	return out
}

// CreateArea handles creating a new monitored area
func (h *AreaHandler) CreateArea(c echo.Context) error {
	var req CreateAreaRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid area input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.AddAreaInput{
		Name:        req.Name,
		Description: req.Description,
		Geometry:    req.Geometry.Geometry(),
		Status:      entity.AreaStatus(req.Status),
		AlertType:   entity.AlertType(req.AlertType),
		Properties:  req.Properties,
	}

	area, err := h.areaUC.AddArea(c.Request().Context(), input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newAreaResponse(area), "Area created successfully")
}

// GetArea handles retrieving a single area by ID
func (h *AreaHandler) GetArea(c echo.Context) error {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid area ID")
	}

	area, err := h.areaUC.GetArea(c.Request().Context(), areaID)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return response.NotFound(c, "AREA_NOT_FOUND", "Area not found")
		}

		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAreaResponse(area), "Area retrieved successfully")
}

// ListAreas handles retrieving all areas
func (h *AreaHandler) ListAreas(c echo.Context) error {
	areas, err := h.areaUC.ListAreas(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAreaResponseSlice(areas), "Areas retrieved successfully")
}

// UpdateArea handles updating an area
func (h *AreaHandler) UpdateArea(c echo.Context) error {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid area ID")
	}

	var req UpdateAreaRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid area input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateAreaInput{
		Name:        req.Name,
		Description: req.Description,
		Properties:  req.Properties,
	}
	if req.Geometry != nil {
		input.Geometry = req.Geometry.Geometry()
	}
	if req.Status != nil {
		status := entity.AreaStatus(*req.Status)
		input.Status = &status
	}
	if req.AlertType != nil {
		alertType := entity.AlertType(*req.AlertType)
		input.AlertType = &alertType
	}

	area, err := h.areaUC.UpdateArea(c.Request().Context(), areaID, input)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return response.NotFound(c, "AREA_NOT_FOUND", "Area not found")
		}

		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAreaResponse(area), "Area updated successfully")
}

// DeleteArea handles deleting an area
func (h *AreaHandler) DeleteArea(c echo.Context) error {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid area ID")
	}

	if err := h.areaUC.DeleteArea(c.Request().Context(), areaID); err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return response.NotFound(c, "AREA_NOT_FOUND", "Area not found")
		}

		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Area deleted successfully"}, "Area deleted successfully")
}

// GetUsersInArea handles retrieving the users currently inside an area
func (h *AreaHandler) GetUsersInArea(c echo.Context) error {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid area ID")
	}

	samples, err := h.locationUC.GetUsersInArea(c.Request().Context(), areaID)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return response.NotFound(c, "AREA_NOT_FOUND", "Area not found")
		}

		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newLocationResponseSlice(samples), "Users in area retrieved successfully")
}

// handleAppError handles application errors
func (h *AreaHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
