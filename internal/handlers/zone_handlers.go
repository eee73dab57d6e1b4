package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"geoattend_backend/internal/services"
	"geoattend_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ZoneHandler holds the zone service.
type ZoneHandler struct {
	zoneService services.ZoneService
}

// NewZoneHandler creates a new ZoneHandler.
func NewZoneHandler(zs services.ZoneService) *ZoneHandler {
	return &ZoneHandler{zoneService: zs}
}

// CreateZone handles the creation of a new geofence zone.
func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req services.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateZone: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	zone, err := h.zoneService.CreateZone(req)
	if err != nil {
		if errors.Is(err, services.ErrZoneValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "CreateZone: Error from zoneService.CreateZone")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create zone.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, zone)
}

// GetZones handles listing all zones.
func (h *ZoneHandler) GetZones(c *gin.Context) {
	zones, err := h.zoneService.GetZones()
	if err != nil {
		utils.LogError(err, "GetZones: Error from zoneService.GetZones")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch zones.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, zones)
}

// UpdateZone handles a partial update of a zone.
func (h *ZoneHandler) UpdateZone(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid zone ID format.", err.Error()))
		return
	}

	var req services.UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateZone: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	zone, err := h.zoneService.UpdateZone(zoneID, req)
	if err != nil {
		if errors.Is(err, services.ErrZoneNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Zone not found.", err.Error()))
		} else if errors.Is(err, services.ErrZoneValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "UpdateZone: Error from zoneService.UpdateZone")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update zone.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, zone)
}

// DeleteZone handles zone removal.
func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid zone ID format.", err.Error()))
		return
	}

	if err := h.zoneService.DeleteZone(zoneID); err != nil {
		if errors.Is(err, services.ErrZoneNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Zone not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteZone: Error from zoneService.DeleteZone")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete zone.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
