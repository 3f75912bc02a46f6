package handler

import (
	"log/slog"
	"net/http"

	"geofence/internal/delivery/http/response"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// MapHandlerParams holds dependencies for MapHandler, injected by Fx.
type MapHandlerParams struct {
	fx.In

	MapUC  usecase.MapUsecase
	Logger *slog.Logger
}

// MapHandler serves the combined map rendering payload
type MapHandler struct {
	mapUC  usecase.MapUsecase
	logger *slog.Logger
}

// NewMapHandler is the constructor for MapHandler
func NewMapHandler(params MapHandlerParams) *MapHandler {
	return &MapHandler{
		mapUC:  params.MapUC,
		logger: params.Logger,
	}
}

// GetMapData handles retrieving the active areas and latest user positions
func (h *MapHandler) GetMapData(c echo.Context) error {
	data, err := h.mapUC.GetMapData(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	payload := map[string]any{
		"areas":     newAreaResponseSlice(data.Areas),
		"locations": newLocationResponseSlice(data.Locations),
	}

	return response.Success(c, http.StatusOK, payload, "Map data retrieved successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleAppError handles application errors
func (h *MapHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
