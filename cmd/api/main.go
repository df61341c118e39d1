package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/school-diary/backend/internal/config"
	"github.com/school-diary/backend/internal/database"
	"github.com/school-diary/backend/internal/handlers"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"github.com/school-diary/backend/internal/store"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title School Diary API
// @version 1.0
// @description Multi-school management platform: schools, rosters, fees, promotion and timetables
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if len(os.Args) > 1 {
		handleCommand(os.Args[1])
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if cfg.Server.Env == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		for _, allowed := range cfg.CORS.Origins {
			if origin == allowed {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check - simple endpoint that doesn't require DB
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "school-diary-api"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "School Diary API", "status": "running"})
	})

	// Metrics
	if cfg.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Services
	authService := services.NewAuthService(db, cfg)
	activityService := services.NewActivityService(db)
	notifyService := services.NewNotifyService(cfg.Notify)

	appStore := store.New(db, activityService)
	if err := appStore.Refresh(); err != nil {
		log.Fatal("Failed to load application state:", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(db, authService, activityService)
	schoolHandler := handlers.NewSchoolHandler(db, appStore, authService, activityService)
	teacherHandler := handlers.NewTeacherHandler(db, appStore, authService, activityService)
	studentHandler := handlers.NewStudentHandler(db, appStore, authService, activityService, notifyService)
	importHandler := handlers.NewStudentImportHandler(studentHandler)
	promotionHandler := handlers.NewPromotionHandler(db, appStore, activityService)
	feeHandler := handlers.NewFeeHandler(db, appStore, activityService)
	timetableHandler := handlers.NewTimetableHandler(db, appStore, activityService)
	reportHandler := handlers.NewReportHandler(db)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Routes
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		protected.Use(middleware.ScopeMiddleware())
		{
			// Platform admin only routes
			platformAdmin := protected.Group("")
			platformAdmin.Use(middleware.RequirePlatformAdmin())
			{
				platformAdmin.GET("/users", userHandler.List)
				platformAdmin.POST("/users", userHandler.Create)
				platformAdmin.GET("/users/:id", userHandler.Get)
				platformAdmin.PUT("/users/:id", userHandler.Update)
				platformAdmin.DELETE("/users/:id", userHandler.Delete)

				platformAdmin.POST("/schools", schoolHandler.Create)
				platformAdmin.PUT("/schools/:id", schoolHandler.Update)
				platformAdmin.DELETE("/schools/:id", schoolHandler.Delete)

				platformAdmin.GET("/activities", activityHandler.Recent)
			}

			// School admin routes (platform admin included)
			schoolAdmin := protected.Group("")
			schoolAdmin.Use(middleware.RequireSchoolAdmin())
			{
				schoolAdmin.POST("/teachers", teacherHandler.Create)
				schoolAdmin.PUT("/teachers/:id", teacherHandler.Update)
				schoolAdmin.DELETE("/teachers/:id", teacherHandler.Delete)

				schoolAdmin.POST("/students", studentHandler.Create)
				schoolAdmin.PUT("/students/:id", studentHandler.Update)
				schoolAdmin.DELETE("/students/:id", studentHandler.Delete)
				schoolAdmin.POST("/students/import", importHandler.Import)
				schoolAdmin.GET("/students/import/template", importHandler.Template)

				schoolAdmin.GET("/promotion/candidates", promotionHandler.Candidates)
				schoolAdmin.POST("/promotion/students/:id", promotionHandler.PromoteStudent)
				schoolAdmin.POST("/promotion/class", promotionHandler.PromoteClass)
				schoolAdmin.POST("/promotion/all", promotionHandler.PromoteAll)

				schoolAdmin.GET("/fees", feeHandler.Roster)
				schoolAdmin.POST("/fees/structure", feeHandler.AssignStructure)
				schoolAdmin.POST("/fees/students/:id/paid", feeHandler.MarkPaid)
				schoolAdmin.POST("/fees/students/:id/pending", feeHandler.MarkPending)
				schoolAdmin.POST("/fees/students/:id/payment", feeHandler.RecordPayment)

				schoolAdmin.POST("/timetables/slot", timetableHandler.SaveSlot)
				schoolAdmin.DELETE("/timetables/slot", timetableHandler.ClearSlot)
			}

			// Routes for all authenticated users
			protected.GET("/schools", schoolHandler.List)
			protected.GET("/schools/:id", schoolHandler.Get)
			protected.GET("/teachers", teacherHandler.List)
			protected.GET("/teachers/:id", teacherHandler.Get)
			protected.GET("/students", studentHandler.List)
			protected.GET("/students/:id", studentHandler.Get)
			protected.GET("/timetables", timetableHandler.Get)
			protected.GET("/reports", reportHandler.List)
		}
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func handleCommand(cmd string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	switch cmd {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatal("Migration failed:", err)
		}
		log.Println("Migration completed successfully")

	case "seed-admin":
		seedAdmin(db, cfg)

	default:
		log.Printf("Unknown command: %s", cmd)
	}
}

func seedAdmin(db *gorm.DB, cfg *config.Config) {
	authService := services.NewAuthService(db, cfg)

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RolePlatformAdmin).Count(&count)
	if count > 0 {
		log.Println("Platform admin already exists")
		return
	}

	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@schooldiary.com"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin@123"
	}

	admin := &models.User{
		SchoolID: nil,
		Email:    email,
		FullName: "Platform Administrator",
		Role:     models.RolePlatformAdmin,
		IsActive: true,
	}

	if err := authService.CreateUser(admin, password); err != nil {
		log.Fatal("Failed to create platform admin:", err)
	}

	log.Printf("Platform Admin: %s", email)
}
