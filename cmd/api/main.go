package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prosemku/backend/internal/ai"
	"github.com/prosemku/backend/internal/config"
	"github.com/prosemku/backend/internal/database"
	"github.com/prosemku/backend/internal/handlers"
	"github.com/prosemku/backend/internal/middleware"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title Prosemku API
// @version 1.0
// @description Program Semester (Prosem) scheduling backend for Indonesian elementary schools
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
		for _, allowedOrigin := range cfg.CORS.Origins {
			if origin == allowedOrigin {
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

	// Static files
	r.Static("/logos", "./public/logos")

	// Health check - simple endpoint that doesn't require DB
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "prosemku-api"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Prosemku API", "status": "running"})
	})

	// Metrics
	if cfg.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Services
	authService := services.NewAuthService(db, cfg)
	var provider ai.Provider
	if cfg.AI.Enabled {
		opts := []ai.GeminiOption{}
		if cfg.AI.BaseURL != "" {
			opts = append(opts, ai.WithBaseURL(cfg.AI.BaseURL))
		}
		provider = ai.NewGeminiClient(cfg.AI.APIKeys, cfg.AI.Model, opts...)
	}
	scheduleService := services.NewScheduleService(db, provider)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(db, authService)
	schoolHandler := handlers.NewSchoolHandler(db)
	schoolUserHandler := handlers.NewSchoolUserHandler(db)
	classHandler := handlers.NewClassHandler(db)
	studentHandler := handlers.NewStudentHandler(db)
	calendarHandler := handlers.NewCalendarHandler(db)
	timetableHandler := handlers.NewTimetableHandler(db)
	topicHandler := handlers.NewTopicHandler(db)
	scheduleHandler := handlers.NewScheduleHandler(db, scheduleService)
	exportHandler := handlers.NewExportHandler(db, scheduleService)
	auditHandler := handlers.NewAuditHandler(db)

	// Routes
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		protected.Use(middleware.TenantMiddleware())
		{
			// System Admin only routes
			sysAdmin := protected.Group("")
			sysAdmin.Use(middleware.RequireSystemAdmin())
			{
				sysAdmin.GET("/users", userHandler.List)
				sysAdmin.POST("/users", userHandler.Create)
				sysAdmin.GET("/users/:id", userHandler.Get)
				sysAdmin.PUT("/users/:id", userHandler.Update)
				sysAdmin.DELETE("/users/:id", userHandler.Delete)

				sysAdmin.POST("/schools", schoolHandler.Create)
				sysAdmin.PUT("/schools/:id", schoolHandler.Update)
				sysAdmin.DELETE("/schools/:id", schoolHandler.Delete)
				sysAdmin.POST("/schools/:id/setup", schoolHandler.SetupSchool)
				sysAdmin.GET("/stats", schoolHandler.GetStats)

				// Audit logs
				sysAdmin.GET("/audit/recent", auditHandler.GetRecentActivity)
			}

			// School Admin routes
			schoolAdmin := protected.Group("")
			schoolAdmin.Use(middleware.RequireSchoolAdmin())
			{
				schoolAdmin.GET("/users/pending", userHandler.Pending)
				schoolAdmin.POST("/users/:id/approve", userHandler.Approve)

				schoolAdmin.GET("/schools/:id/users", schoolUserHandler.GetSchoolUsers)
				schoolAdmin.POST("/schools/:id/teachers", schoolUserHandler.CreateTeacher)
				schoolAdmin.POST("/classes/assign-teacher", schoolUserHandler.AssignTeacherToClass)
				schoolAdmin.PUT("/school-users/:id/role", schoolUserHandler.UpdateUserRole)

				schoolAdmin.POST("/classes", classHandler.Create)
				schoolAdmin.PUT("/classes/:id", classHandler.Update)
				schoolAdmin.POST("/students", studentHandler.Create)
				schoolAdmin.PUT("/students/:id", studentHandler.Update)
				schoolAdmin.DELETE("/students/:id", studentHandler.Delete)
			}

			// Teacher routes (all authenticated users)
			protected.GET("/schools", schoolHandler.List)
			protected.GET("/schools/:id", schoolHandler.Get)
			protected.GET("/classes", classHandler.List)
			protected.GET("/classes/:id", classHandler.Get)
			protected.GET("/classes/:id/students", classHandler.GetStudents)
			protected.GET("/students", studentHandler.List)
			protected.GET("/students/:id", studentHandler.Get)

			protected.GET("/calendar", calendarHandler.List)
			protected.POST("/calendar", calendarHandler.Create)
			protected.PUT("/calendar/:id", calendarHandler.Update)
			protected.DELETE("/calendar/:id", calendarHandler.Delete)
			protected.POST("/calendar/seed-holidays", calendarHandler.SeedHolidays)

			protected.GET("/timetable", timetableHandler.List)
			protected.POST("/timetable", timetableHandler.Upsert)
			protected.DELETE("/timetable/:id", timetableHandler.Delete)

			protected.GET("/topics", topicHandler.List)
			protected.POST("/topics", topicHandler.Create)
			protected.GET("/topics/:id", topicHandler.Get)
			protected.PUT("/topics/:id", topicHandler.Update)
			protected.DELETE("/topics/:id", topicHandler.Delete)

			protected.POST("/schedule/run", scheduleHandler.Run)
			protected.GET("/schedule/runs", scheduleHandler.Runs)
			protected.GET("/schedule/assignments", scheduleHandler.Assignments)
			protected.PUT("/schedule/assignments/:id", scheduleHandler.UpdateAssignment)
			protected.GET("/schedule/assessment-window", scheduleHandler.AssessmentWindow)

			protected.GET("/export/excel", exportHandler.Excel)
			protected.GET("/export/pdf", exportHandler.PDF)
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

	case "seed-demo":
		seedDemo(db, cfg)

	default:
		log.Printf("Unknown command: %s", cmd)
	}
}

func seedAdmin(db *gorm.DB, cfg *config.Config) {
	authService := services.NewAuthService(db, cfg)

	var count int64
	db.Model(&models.User{}).Where("role = ?", "system_admin").Count(&count)
	if count > 0 {
		log.Println("System admin already exists")
		return
	}

	sysAdmin := &models.User{
		SchoolID:   nil,
		Email:      "sysadmin@prosemku.id",
		FullName:   "System Administrator",
		Role:       "system_admin",
		IsActive:   true,
		IsApproved: true,
	}
	if err := authService.CreateUser(sysAdmin, "Admin@123"); err != nil {
		log.Fatal("Failed to create system admin:", err)
	}
	log.Println("System Admin: sysadmin@prosemku.id / Admin@123")
}

// seedDemo provisions a demo school with classes, weekly schedules, the
// holiday calendar and an approved demo teacher.
func seedDemo(db *gorm.DB, cfg *config.Config) {
	authService := services.NewAuthService(db, cfg)
	setupService := services.NewSchoolSetupService(db)

	var school models.School
	if err := db.First(&school, "npsn = ?", "20200001").Error; err != nil {
		school = models.School{
			Name:          "SD Negeri 1 Contoh",
			NPSN:          "20200001",
			Address:       "Jl. Pendidikan No. 1",
			Province:      "Jawa Tengah",
			Regency:       "Kabupaten Contoh",
			ContactEmail:  "sdn1contoh@prosemku.id",
			PrincipalName: "Dra. Siti Rahayu, M.Pd.",
			PrincipalNIP:  "196805121990032003",
		}
		if err := db.Create(&school).Error; err != nil {
			log.Fatal("Failed to create demo school:", err)
		}
	}

	startYear := time.Now().Year()
	if time.Now().Month() < time.July {
		startYear--
	}
	if err := setupService.SetupSchool(&school, startYear); err != nil {
		log.Fatal("Failed to setup demo school:", err)
	}

	var teacher models.User
	if err := db.First(&teacher, "email = ?", "guru@prosemku.id").Error; err != nil {
		teacher = models.User{
			SchoolID:   &school.ID,
			Email:      "guru@prosemku.id",
			FullName:   "Budi Santoso, S.Pd.",
			NIP:        "198501012010011001",
			Role:       "teacher",
			IsActive:   true,
			IsApproved: true,
		}
		if err := authService.CreateUser(&teacher, "Guru@123"); err != nil {
			log.Fatal("Failed to create demo teacher:", err)
		}
	}

	log.Printf("Demo school %q ready for %d/%d", school.Name, startYear, startYear+1)
	log.Println("Teacher: guru@prosemku.id / Guru@123")
}
