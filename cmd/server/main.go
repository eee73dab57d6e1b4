package main

import (
	"log"
	"os"
	"strings"
	"time"

	"geoattend_backend/internal/database"
	"geoattend_backend/internal/middleware"
	router_pkg "geoattend_backend/internal/router"
	"geoattend_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize Logger
	utils.InitLogger()

	// JWT signing secret must be overridden outside local development
	utils.InitJWT(utils.Getenv("JWT_SECRET", ""))

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "geoattend_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "geoattend_password")
	dbName := utils.Getenv("DB_NAME", "geoattend_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	// Initialize Database
	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	// Deployment time reference used for attendance day bucketing. All check-in
	// and check-out decisions are evaluated against this location.
	tzName := utils.Getenv("ATTENDANCE_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("Invalid ATTENDANCE_TIMEZONE %q: %v", tzName, err)
	}
	utils.LogInfo("Attendance timezone configured", map[string]interface{}{"timezone": tzName})

	router := gin.Default()

	// Correlation ids before the request logger so every log line carries one
	router.Use(middleware.RequestIDMiddleware())
	router.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"} // Default origins
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	// Setup all application routes
	dbConn := database.GetDB()
	router_pkg.Setup(router, dbConn, loc)

	// Server port configuration
	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := router.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
