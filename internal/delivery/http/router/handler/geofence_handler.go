package handler

import (
	"log/slog"
	"net/http"

	"geofence/internal/delivery/http/response"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// GeofenceHandlerParams holds dependencies for GeofenceHandler, injected by Fx.
type GeofenceHandlerParams struct {
	fx.In

	GeofenceUC usecase.GeofenceUsecase
	Logger     *slog.Logger
}

// GeofenceHandler holds dependencies for geofence query handlers
type GeofenceHandler struct {
	geofenceUC usecase.GeofenceUsecase
	logger     *slog.Logger
}

// NewGeofenceHandler is the constructor for GeofenceHandler
func NewGeofenceHandler(params GeofenceHandlerParams) *GeofenceHandler {
	return &GeofenceHandler{
		geofenceUC: params.GeofenceUC,
		logger:     params.Logger,
	}
}

// ResolvePointRequest represents the request body for resolving a raw point
type ResolvePointRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// GetUserAreas handles resolving a user's latest position against the active
// area snapshot
func (h *GeofenceHandler) GetUserAreas(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	result, err := h.geofenceUC.CheckUserAreas(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrSampleNotFound) {
			return response.NotFound(c, "LOCATION_NOT_FOUND", "User has no recorded location")
		}

		return h.handleAppError(c, err)
	}

	payload := map[string]any{
		"user_location": newLocationResponse(result.Sample),
		"areas":         newAreaResponseSlice(result.Areas),
	}

	return response.Success(c, http.StatusOK, payload, "User areas resolved successfully")
}

// ResolvePoint handles resolving an arbitrary point against the active area
// snapshot without recording anything
func (h *GeofenceHandler) ResolvePoint(c echo.Context) error {
	var req ResolvePointRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid point input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	areas, err := h.geofenceUC.ResolvePoint(c.Request().Context(), orb.Point{req.Longitude, req.Latitude})
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAreaResponseSlice(areas), "Point resolved successfully")
}

// handleAppError handles application errors
func (h *GeofenceHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
