package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/shiftlog/work-hour-api/internal/cache"
	"github.com/shiftlog/work-hour-api/internal/config"
	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/database"
	"github.com/shiftlog/work-hour-api/internal/handlers"
	"github.com/shiftlog/work-hour-api/internal/middleware"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"github.com/shiftlog/work-hour-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	workLogRepo := repository.NewWorkLogRepository(db)

	// Dashboard cache
	statsCache := cache.New(cache.NewClient(cfg), 5*time.Minute)

	// Services
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	teamService := services.NewTeamService(teamRepo, userRepo)
	workLogService := services.NewWorkLogService(workLogRepo, projectRepo, categoryRepo, teamRepo, statsCache)
	dashboardService := services.NewDashboardService(workLogRepo, teamRepo, statsCache)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	teamHandler := handlers.NewTeamHandler(teamService)
	workLogHandler := handlers.NewWorkLogHandler(workLogService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := gin.Default()

	// Session store backed by Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	requireAuth := middleware.RequireAuth(cfg, userRepo)
	requireManager := middleware.RequireRole(models.RoleManager)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Work Hour API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public, except the session-bound ones)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
			auth.POST("/password-reset/request", authHandler.RequestPasswordReset)
			auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
		}

		// Work log routes (protected)
		workLogs := api.Group("/work-logs")
		workLogs.Use(requireAuth)
		{
			workLogs.GET("", workLogHandler.ListWorkLogs)
			workLogs.POST("", workLogHandler.CreateWorkLog)
			workLogs.PUT("/batch", workLogHandler.BatchUpdateWorkLogs)
			workLogs.GET("/:id", workLogHandler.GetWorkLog)
			workLogs.PUT("/:id", workLogHandler.UpdateWorkLog)
			workLogs.DELETE("/:id", workLogHandler.DeleteWorkLog)
		}

		// Dashboard routes (protected)
		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/personal", dashboardHandler.PersonalStats)
			dashboard.GET("/team/:id", dashboardHandler.TeamStats)
			dashboard.GET("/projects", requireManager, dashboardHandler.ProjectStats)
		}

		// Project routes (reads for everyone, writes for managers)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.POST("", requireManager, projectHandler.CreateProject)
			projects.PUT("/:id", requireManager, projectHandler.UpdateProject)
			projects.DELETE("/:id", requireManager, projectHandler.DeactivateProject)
		}

		// Work category routes
		categories := api.Group("/work-categories")
		categories.Use(requireAuth)
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.POST("", requireManager, categoryHandler.CreateCategory)
			categories.PUT("/:id", requireManager, categoryHandler.UpdateCategory)
			categories.DELETE("/:id", requireManager, categoryHandler.DeactivateCategory)
		}

		// Team routes
		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", teamHandler.ListTeams)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.POST("", requireAdmin, teamHandler.CreateTeam)
			teams.PUT("/:id", requireAdmin, teamHandler.UpdateTeam)
			teams.DELETE("/:id", requireAdmin, teamHandler.DeactivateTeam)
			teams.POST("/:id/members", teamHandler.AddMember)
			teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)
		}

		// User management routes (admin only)
		users := api.Group("/users")
		users.Use(requireAuth, requireAdmin)
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeactivateUser)
		}
	}

	log.Printf("Listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
