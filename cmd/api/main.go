package main

import (
	"log"
	"os"
	"time"

	"github.com/campuspool/campuspool-backend/internal/database"
	"github.com/campuspool/campuspool-backend/internal/handlers"
	"github.com/campuspool/campuspool-backend/internal/logger"
	"github.com/campuspool/campuspool-backend/internal/middleware"
	"github.com/campuspool/campuspool-backend/internal/pools"
	"github.com/campuspool/campuspool-backend/internal/services"
	"github.com/gin-contrib/cors"
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const defaultStartPoint = "Thapar University"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Structured application logging to a rotating file
	logger.Setup()

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	joinPolicy, ok := pools.ParseJoinPolicy(os.Getenv("POOL_JOIN_POLICY"))
	if !ok {
		log.Fatalf("Invalid POOL_JOIN_POLICY: %q", os.Getenv("POOL_JOIN_POLICY"))
	}

	startPoint := os.Getenv("DEFAULT_START_POINT")
	if startPoint == "" {
		startPoint = defaultStartPoint
	}

	registry := pools.NewRegistry(db, startPoint)
	workflow := pools.NewWorkflow(db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger(ginlogger.WithDefaultLevel(zerolog.InfoLevel)))

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/google", handlers.GoogleLogin(db))
			auth.POST("/refresh", handlers.RefreshToken(db))
			auth.POST("/logout", handlers.Logout())
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/register-info", handlers.CompleteProfile(db))
			}

			poolRoutes := protected.Group("/pools")
			{
				poolRoutes.GET("", handlers.GetPools(registry))
				poolRoutes.GET("/:id", handlers.GetPool(registry))
				poolRoutes.GET("/:id/requests", handlers.ListPoolRequests(workflow))

				mutating := poolRoutes.Group("")
				mutating.Use(middleware.RequireCompleteProfile(db))
				{
					mutating.POST("", handlers.CreatePool(registry))
					mutating.PUT("/:id", handlers.UpdatePool(registry))
					mutating.PATCH("/:id", handlers.UpdatePool(registry))
					mutating.DELETE("/:id", handlers.DeletePool(registry))
					mutating.POST("/:id/join", handlers.JoinPool(registry, workflow, joinPolicy))
				}
			}

			requests := protected.Group("/pool-requests")
			requests.Use(middleware.RequireCompleteProfile(db))
			{
				requests.POST("/:id/accept", handlers.AcceptPoolRequest(workflow))
				requests.POST("/:id/reject", handlers.RejectPoolRequest(workflow))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
