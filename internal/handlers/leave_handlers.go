package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"geoattend_backend/internal/services"
	"geoattend_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LeaveHandler holds the leave service.
type LeaveHandler struct {
	leaveService services.LeaveService
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(ls services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: ls}
}

// ApplyLeave handles filing a new leave request.
func (h *LeaveHandler) ApplyLeave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	var req services.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ApplyLeave: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	leave, err := h.leaveService.ApplyLeave(userID, req)
	if err != nil {
		if errors.Is(err, services.ErrLeaveValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "ApplyLeave: Error from leaveService.ApplyLeave")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to file leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, leave)
}

// GetMyLeaves handles listing the caller's leave requests.
func (h *LeaveHandler) GetMyLeaves(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	leaves, err := h.leaveService.GetMyLeaves(userID)
	if err != nil {
		utils.LogError(err, "GetMyLeaves: Error from leaveService.GetMyLeaves")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch leave requests.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, leaves)
}

// GetLeaves handles listing all leave requests for HR/Admin review.
func (h *LeaveHandler) GetLeaves(c *gin.Context) {
	leaves, err := h.leaveService.GetLeaves()
	if err != nil {
		utils.LogError(err, "GetLeaves: Error from leaveService.GetLeaves")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch leave requests.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, leaves)
}

// ReviewLeave handles approving or rejecting a leave request.
func (h *LeaveHandler) ReviewLeave(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}

	leaveID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid leave ID format.", err.Error()))
		return
	}

	var req services.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReviewLeave: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	leave, err := h.leaveService.ReviewLeave(leaveID, reviewerID, req)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else if errors.Is(err, services.ErrLeaveValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "ReviewLeave: Error from leaveService.ReviewLeave")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to review leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, leave)
}
