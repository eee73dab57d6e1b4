package router

import (
	"geoattend_backend/internal/handlers"
	"geoattend_backend/internal/middleware"
	"geoattend_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up the user administration routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	{
		userRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleHR), userHandler.GetUsers)
		userRoutes.PATCH("/:id/active", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.UpdateUserActive)
		userRoutes.PATCH("/:id/role", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.UpdateUserRole)
	}
}

// SetupZoneRoutes sets up the geofence zone routes. Every authenticated user
// can read zones; mutations are Admin only.
func SetupZoneRoutes(authenticatedGroup *gin.RouterGroup, zoneHandler *handlers.ZoneHandler) {
	zoneRoutes := authenticatedGroup.Group("/zones")
	{
		zoneRoutes.GET("", zoneHandler.GetZones)

		zoneWriteRoutes := zoneRoutes.Group("")
		zoneWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			zoneWriteRoutes.POST("", zoneHandler.CreateZone)
			zoneWriteRoutes.PATCH("/:id", zoneHandler.UpdateZone)
			zoneWriteRoutes.DELETE("/:id", zoneHandler.DeleteZone)
		}
	}
}

// SetupShiftRoutes sets up the shift routes. Every authenticated user can read
// shifts; mutations are Admin only.
func SetupShiftRoutes(authenticatedGroup *gin.RouterGroup, shiftHandler *handlers.ShiftHandler) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	{
		shiftRoutes.GET("", shiftHandler.GetShifts)

		shiftWriteRoutes := shiftRoutes.Group("")
		shiftWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			shiftWriteRoutes.POST("", shiftHandler.CreateShift)
			shiftWriteRoutes.PATCH("/:id", shiftHandler.UpdateShift)
			shiftWriteRoutes.DELETE("/:id", shiftHandler.DeleteShift)
		}
	}
}

// SetupAttendanceRoutes sets up the attendance routes. Check-in/out and the
// "me" projections are available to every authenticated user; the cross-user
// listing and daily sheet are HR/Admin only.
func SetupAttendanceRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	attendanceRoutes := authenticatedGroup.Group("/attendance")
	{
		attendanceRoutes.POST("/check-in", attendanceHandler.CheckIn)
		attendanceRoutes.POST("/check-out", attendanceHandler.CheckOut)
		attendanceRoutes.GET("/me/today", attendanceHandler.MyToday)
		attendanceRoutes.GET("/me", attendanceHandler.MyHistory)

		attendanceRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleHR, models.RoleAdmin), attendanceHandler.AdminList)
		attendanceRoutes.GET("/daily", middleware.RoleAuthMiddleware(models.RoleHR, models.RoleAdmin), attendanceHandler.AdminDaily)
	}
}

// SetupLeaveRoutes sets up the leave request routes.
func SetupLeaveRoutes(authenticatedGroup *gin.RouterGroup, leaveHandler *handlers.LeaveHandler) {
	leaveRoutes := authenticatedGroup.Group("/leaves")
	{
		leaveRoutes.POST("", leaveHandler.ApplyLeave)
		leaveRoutes.GET("/me", leaveHandler.GetMyLeaves)

		leaveRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleHR, models.RoleAdmin), leaveHandler.GetLeaves)
		leaveRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleHR, models.RoleAdmin), leaveHandler.ReviewLeave)
	}
}
