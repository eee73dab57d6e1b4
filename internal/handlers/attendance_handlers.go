package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/services"
	"geoattend_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler holds the attendance service.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

// currentUserID extracts the authenticated user's id placed in the context by
// the auth middleware.
func currentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}

// CheckIn handles POST /attendance/check-in.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	var req services.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CheckIn: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.attendanceService.CheckIn(userID, req, time.Now())
	if err != nil {
		h.respondCheckInError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":            true,
		"attendance_id": record.ID,
		"check_in_at":   record.CheckInAt,
	})
}

// respondCheckInError maps the attendance service error taxonomy to HTTP
// responses. Conflict and out-of-zone rejections carry extra payload for user
// feedback, so they are written directly rather than via RespondWithError.
func (h *AttendanceHandler) respondCheckInError(c *gin.Context, err error) {
	var conflictErr *services.OpenSessionConflictError
	var outOfZoneErr *services.OutOfZoneError

	switch {
	case errors.Is(err, services.ErrAttendanceValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrZoneNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Zone not found.", err.Error()))
	case errors.Is(err, services.ErrShiftNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":         utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Already checked in and not checked out yet.", ""),
			"attendance_id": conflictErr.AttendanceID,
		})
		c.Abort()
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Already checked in and not checked out yet.", err.Error()))
	case errors.As(err, &outOfZoneErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                 utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeOutOfZone, "You are outside the allowed zone.", ""),
			"distance_meters":       outOfZoneErr.DistanceMeters,
			"allowed_radius_meters": outOfZoneErr.AllowedRadiusMeters,
		})
		c.Abort()
	case errors.Is(err, services.ErrZoneMisconfigured):
		utils.LogError(err, "CheckIn: zone misconfiguration")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeZoneMisconfigured, "Zone is misconfigured.", ""))
	default:
		utils.LogError(err, "CheckIn: Error from attendanceService.CheckIn")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check in.", "Internal error"))
	}
}

// CheckOut handles POST /attendance/check-out.
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	var req services.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CheckOut: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.attendanceService.CheckOut(userID, req, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAttendanceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrNoOpenSession) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "You have not checked in today or already checked out.", err.Error()))
		} else {
			utils.LogError(err, "CheckOut: Error from attendanceService.CheckOut")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check out.", "Internal error"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"attendance_id":  record.ID,
		"check_in_at":    record.CheckInAt,
		"check_out_at":   record.CheckOutAt,
		"worked_minutes": record.WorkedMinutes,
	})
}

// MyToday handles GET /attendance/me/today.
func (h *AttendanceHandler) MyToday(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	record, err := h.attendanceService.MyToday(userID, time.Now())
	if err != nil {
		utils.LogError(err, "MyToday: Error from attendanceService.MyToday")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch today's attendance.", "Internal error"))
		return
	}

	// record is nil when the user has no attendance today; that's not an error.
	c.JSON(http.StatusOK, gin.H{"ok": true, "record": record})
}

// MyHistory handles GET /attendance/me.
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	history, err := h.attendanceService.MyHistory(userID, page, size)
	if err != nil {
		utils.LogError(err, "MyHistory: Error from attendanceService.MyHistory")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance history.", "Internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"page":  history.Page,
		"size":  history.Size,
		"total": history.Total,
		"items": history.Items,
	})
}

// parseListTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseListTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// AdminList handles GET /attendance for HR/Admin.
func (h *AttendanceHandler) AdminList(c *gin.Context) {
	var filter models.AttendanceFilter

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid user_id format.", err.Error()))
			return
		}
		filter.UserID = &userID
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := parseListTime(fromStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid from date.", err.Error()))
			return
		}
		filter.From = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := parseListTime(toStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid to date.", err.Error()))
			return
		}
		filter.To = &to
	}

	records, err := h.attendanceService.AdminList(filter)
	if err != nil {
		utils.LogError(err, "AdminList: Error from attendanceService.AdminList")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance records.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, records)
}

// AdminDaily handles GET /attendance/daily for HR/Admin.
func (h *AttendanceHandler) AdminDaily(c *gin.Context) {
	date := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := parseListTime(dateStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date.", err.Error()))
			return
		}
		date = parsed
	}

	records, err := h.attendanceService.AdminDaily(date)
	if err != nil {
		utils.LogError(err, "AdminDaily: Error from attendanceService.AdminDaily")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch daily attendance.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, records)
}
