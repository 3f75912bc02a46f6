// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"geofence/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AreaHandler     *handler.AreaHandler
	LocationHandler *handler.LocationHandler
	GeofenceHandler *handler.GeofenceHandler
	MapHandler      *handler.MapHandler
	DeviceHandler   *handler.DeviceHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	areaHandler     *handler.AreaHandler
	locationHandler *handler.LocationHandler
	geofenceHandler *handler.GeofenceHandler
	mapHandler      *handler.MapHandler
	deviceHandler   *handler.DeviceHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		areaHandler:     params.AreaHandler,
		locationHandler: params.LocationHandler,
		geofenceHandler: params.GeofenceHandler,
		mapHandler:      params.MapHandler,
		deviceHandler:   params.DeviceHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Area catalog routes
	areaGroup := e.Group("/areas")
	{
		areaGroup.POST("", r.areaHandler.CreateArea)
		areaGroup.GET("", r.areaHandler.ListAreas)
		areaGroup.GET("/:id", r.areaHandler.GetArea)
		areaGroup.PUT("/:id", r.areaHandler.UpdateArea)
		areaGroup.DELETE("/:id", r.areaHandler.DeleteArea)
		areaGroup.GET("/:id/users", r.areaHandler.GetUsersInArea)
	}

	// Per-user routes: history ingestion, geofence queries, devices
	userGroup := e.Group("/users/:userID")
	{
		userGroup.POST("/locations", r.locationHandler.RecordLocation)
		userGroup.GET("/locations", r.locationHandler.GetUserHistory)
		userGroup.GET("/areas", r.geofenceHandler.GetUserAreas)
		userGroup.POST("/devices", r.deviceHandler.RegisterDevice)
		userGroup.DELETE("/devices/:id", r.deviceHandler.DeactivateDevice)
	}

	// Global read-only routes
	e.GET("/locations/latest", r.locationHandler.GetLatestLocations)
	e.POST("/geofence/resolve", r.geofenceHandler.ResolvePoint)
	e.GET("/map", r.mapHandler.GetMapData)
}
