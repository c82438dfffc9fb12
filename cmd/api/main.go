package main

import (
	"fmt"
	"net/http"
	"os"

	"divvy/internal/config"
	"divvy/internal/database"
	"divvy/internal/handlers"
	"divvy/internal/logger"
	"divvy/internal/middleware"
	"divvy/internal/services"
	"divvy/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "divvy/internal/docs" // Import swagger docs
)

// @title           Divvy API
// @version         1.0
// @description     Divvy is a shared-expense tracker: groups, expenses with exact splits, settlements, balance suggestions and recurring expenses.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	balanceService := services.NewBalanceService(db)
	groupService := services.NewGroupService(db, balanceService)
	expenseService := services.NewExpenseService(db)
	settlementService := services.NewSettlementService(db)
	recurringService := services.NewRecurringService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService, balanceService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/users", authHandler.Register)
	v1.POST("/login/access-token", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User routes
	users := protected.Group("/users")
	users.GET("/me", authHandler.GetMe)
	users.GET("/search", authHandler.SearchUsers)

	// Group routes
	groups := protected.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.GET("", groupHandler.GetUserGroups)
	groups.GET("/summary", groupHandler.GetSummary)
	groups.GET("/:id", groupHandler.GetGroupByID)
	groups.GET("/:id/balances", groupHandler.GetGroupBalances)
	groups.POST("/:id/members/:userId", groupHandler.AddMember)
	groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.GET("/group/:groupId", expenseHandler.GetGroupExpenses)

	// Settlement routes
	settlements := protected.Group("/settlements")
	settlements.POST("", settlementHandler.RecordSettlement)
	settlements.GET("/group/:groupId", settlementHandler.GetGroupSettlements)

	// Recurring expense routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("/group/:groupId", recurringHandler.GetGroupRecurring)
	recurring.PUT("/:id/status", recurringHandler.SetStatus)
	recurring.POST("/trigger", recurringHandler.Trigger)

	log.Infof("Starting Divvy backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
