// internal/handlers/fleet/fleet_handler.go
package fleet

import (
	"net/http"

	"fleetmap-service/internal/domain/fleet"
	"fleetmap-service/internal/pkg/response"
	service "fleetmap-service/internal/service/fleet"

	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	fleetService *service.FleetService
}

func NewFleetHandler(fleetService *service.FleetService) *FleetHandler {
	return &FleetHandler{
		fleetService: fleetService,
	}
}

// GetMapConfig returns tile layer, attribution and default camera settings
func (h *FleetHandler) GetMapConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, "map config retrieved", h.fleetService.MapConfig())
}

// GetLocations returns the raw vehicle-locations collection
func (h *FleetHandler) GetLocations(c *gin.Context) {
	vehicles, err := h.fleetService.Locations(c.Request.Context())
	if err != nil {
		response.UpstreamError(c, "failed to fetch vehicle locations", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle locations retrieved", gin.H{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// GetMap renders markers, stats and search results in one call
func (h *FleetHandler) GetMap(c *gin.Context) {
	var filters fleet.OverviewFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	overview, err := h.fleetService.Overview(c.Request.Context(), &filters)
	if err != nil {
		response.UpstreamError(c, "failed to fetch vehicle locations", err)
		return
	}

	response.Success(c, http.StatusOK, "map rendered", overview)
}

// GetStats returns the fleet summary counts
func (h *FleetHandler) GetStats(c *gin.Context) {
	stats, err := h.fleetService.Stats(c.Request.Context())
	if err != nil {
		response.UpstreamError(c, "failed to fetch vehicle locations", err)
		return
	}

	response.Success(c, http.StatusOK, "fleet stats retrieved", stats)
}

// Search matches vehicles by plate, model or driver name
func (h *FleetHandler) Search(c *gin.Context) {
	var filters fleet.SearchFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.fleetService.Search(c.Request.Context(), filters.Query)
	if err != nil {
		response.UpstreamError(c, "failed to fetch vehicle locations", err)
		return
	}

	response.Success(c, http.StatusOK, "search completed", result)
}
