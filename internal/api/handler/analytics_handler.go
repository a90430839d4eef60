package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

// AnalyticsHandler exposes the read-only rollup endpoints.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Overview handles GET /api/v1/analytics/overview.
//
// @Summary      System-wide report statistics
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  ports.Overview
// @Router       /api/v1/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c echo.Context) error {
	overview, err := h.service.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}

// Timeline handles GET /api/v1/analytics/reports-timeline.
//
// @Summary      Daily report counts over the last N days
// @Tags         analytics
// @Produce      json
// @Param        days  query     int  false  "Window in days (1-365, default 30)"
// @Success      200   {array}   ports.TimelinePoint
// @Failure      400   {object}  errorResponse
// @Router       /api/v1/analytics/reports-timeline [get]
func (h *AnalyticsHandler) Timeline(c echo.Context) error {
	days, err := intParam(c, "days", 30)
	if err != nil {
		return err
	}

	timeline, err := h.service.Timeline(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, timeline)
}

// TopLocations handles GET /api/v1/analytics/top-locations.
//
// @Summary      Locations with the most reports
// @Tags         analytics
// @Produce      json
// @Param        limit  query     int  false  "Maximum clusters to return (1-50, default 10)"
// @Success      200    {array}   ports.LocationCluster
// @Failure      400    {object}  errorResponse
// @Router       /api/v1/analytics/top-locations [get]
func (h *AnalyticsHandler) TopLocations(c echo.Context) error {
	limit, err := intParam(c, "limit", 10)
	if err != nil {
		return err
	}

	clusters, err := h.service.TopLocations(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clusters)
}

// UserStats handles GET /api/v1/analytics/user-stats/:id.
//
// @Summary      Per-user report statistics
// @Tags         analytics
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  ports.UserStats
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/analytics/user-stats/{id} [get]
func (h *AnalyticsHandler) UserStats(c echo.Context) error {
	stats, err := h.service.UserStats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
