package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"geofence/internal/delivery/http/response"
	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// LocationHandlerParams holds dependencies for LocationHandler, injected by Fx.
type LocationHandlerParams struct {
	fx.In

	LocationUC usecase.LocationUsecase
	Logger     *slog.Logger
}

// LocationHandler holds dependencies for location-related handlers
type LocationHandler struct {
	locationUC usecase.LocationUsecase
	logger     *slog.Logger
}

// NewLocationHandler is the constructor for LocationHandler
func NewLocationHandler(params LocationHandlerParams) *LocationHandler {
	return &LocationHandler{
		locationUC: params.LocationUC,
		logger:     params.Logger,
	}
}

// RecordLocationRequest represents the request body for reporting a position.
// Clients send latitude/longitude fields; internally positions are handled in
// (longitude, latitude) order.
type RecordLocationRequest struct {
	Latitude   float64           `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64           `json:"longitude" validate:"min=-180,max=180"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	Accuracy   *float64          `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	Altitude   *float64          `json:"altitude,omitempty"`
	Heading    *float64          `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	Speed      *float64          `json:"speed,omitempty" validate:"omitempty,min=0"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
}

// LocationResponse is the wire representation of a location sample, with the
// point flattened back to latitude/longitude fields.
type LocationResponse struct {
	*entity.LocationSample
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newLocationResponse(sample *entity.LocationSample) *LocationResponse {
	if sample == nil {
		return nil
	}

	return &LocationResponse{
		LocationSample: sample,
		Latitude:       sample.Point[1],
		Longitude:      sample.Point[0],
	}
}

func newLocationResponseSlice(samples []*entity.LocationSample) []*LocationResponse {
	out := make([]*LocationResponse, 0, len(samples))
	for _, sample := range samples {
		out = append(out, newLocationResponse(sample))
	}

	return out
}

// RecordLocation handles ingesting a new position report for a user
func (h *LocationHandler) RecordLocation(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	var req RecordLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid location input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.RecordLocationInput{
		Point:      orb.Point{req.Longitude, req.Latitude},
		Accuracy:   req.Accuracy,
		Altitude:   req.Altitude,
		Heading:    req.Heading,
		Speed:      req.Speed,
		DeviceInfo: req.DeviceInfo,
	}
	if req.Timestamp != nil {
		input.Timestamp = *req.Timestamp
	}

	result, err := h.locationUC.RecordLocation(c.Request().Context(), userID, input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, result, "Location recorded successfully")
}

// GetUserHistory handles retrieving a user's location history
func (h *LocationHandler) GetUserHistory(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	limit := 0
	if rawLimit := c.QueryParam("limit"); rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			return response.BadRequest(c, "INVALID_LIMIT", "Invalid limit parameter")
		}
	}

	samples, err := h.locationUC.GetUserHistory(c.Request().Context(), userID, limit)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newLocationResponseSlice(samples), "Location history retrieved successfully")
}

// GetLatestLocations handles retrieving every user's latest position
func (h *LocationHandler) GetLatestLocations(c echo.Context) error {
	samples, err := h.locationUC.GetLatestLocations(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newLocationResponseSlice(samples), "Latest locations retrieved successfully")
}

// handleAppError handles application errors
func (h *LocationHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
