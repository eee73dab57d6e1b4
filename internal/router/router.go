package router

import (
	"database/sql"
	"net/http"
	"time"

	"geoattend_backend/internal/handlers"
	"geoattend_backend/internal/middleware"
	"geoattend_backend/internal/repositories"
	"geoattend_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application. loc is the deployment's
// day-bucketing time reference for the attendance core.
func Setup(engine *gin.Engine, db *sql.DB, loc *time.Location) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	zoneRepo := repositories.NewZoneRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	leaveRepo := repositories.NewLeaveRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, db)
	userService := services.NewUserService(userRepo, db)
	zoneService := services.NewZoneService(zoneRepo, db)
	shiftService := services.NewShiftService(shiftRepo, db)
	attendanceService := services.NewAttendanceService(attendanceRepo, zoneRepo, shiftRepo, db, loc)
	leaveService := services.NewLeaveService(leaveRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	zoneHandler := handlers.NewZoneHandler(zoneService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	leaveHandler := handlers.NewLeaveHandler(leaveService)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.GET("/me", authHandler.GetCurrentUser)

		SetupUserRoutes(authenticated, userHandler)
		SetupZoneRoutes(authenticated, zoneHandler)
		SetupShiftRoutes(authenticated, shiftHandler)
		SetupAttendanceRoutes(authenticated, attendanceHandler)
		SetupLeaveRoutes(authenticated, leaveHandler)
	}
}

// SetupPublicAuthRoutes sets up the unauthenticated auth routes.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/signup", authHandler.SignUp)
	group.POST("/login", authHandler.Login)
}
