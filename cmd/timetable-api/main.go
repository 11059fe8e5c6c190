package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	internalhandler "github.com/noah-isme/university-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/university-timetable-api/internal/middleware"
	"github.com/noah-isme/university-timetable-api/internal/models"
	"github.com/noah-isme/university-timetable-api/internal/repository"
	"github.com/noah-isme/university-timetable-api/internal/service"
	"github.com/noah-isme/university-timetable-api/pkg/cache"
	"github.com/noah-isme/university-timetable-api/pkg/config"
	"github.com/noah-isme/university-timetable-api/pkg/database"
	"github.com/noah-isme/university-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/university-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/university-timetable-api/pkg/middleware/requestid"
)

// @title University Timetable API
// @version 1.0.0
// @description Constraint-based university timetable generation service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var cacheCloser interface{ Close() error }
	var cacheRepo service.CacheRepository
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("cache disabled", "error", err)
	} else {
		cacheCloser = client
		cacheRepo = repository.NewCacheRepository(client, logr)
	}
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	authRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(authRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "university-timetable-api",
		Audience:           []string{"university-timetable-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)
	protectedAuth.GET("/me", authHandler.Me)

	roomRepo := repository.NewRoomRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	groupRepo := repository.NewStudentGroupRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, 30*time.Second, logr, cacheRepo != nil)

	timetableSvc := service.NewTimetableService(
		db, roomRepo, courseRepo, groupRepo, lecturerRepo, versionRepo, eventRepo,
		cfg.Scheduler, metricsSvc, cacheSvc, logr,
	)
	timetableHandler := internalhandler.NewTimetableHandler(timetableSvc)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	timetables := secured.Group("/timetables")
	timetables.POST("/generate", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), timetableHandler.Generate)
	timetables.POST("/validate-event", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), timetableHandler.ValidateEvent)
	timetables.GET("/versions", internalmiddleware.RBAC(string(models.RoleTeacher), string(models.RoleAdmin), string(models.RoleSuperAdmin)), timetableHandler.ListVersions)
	timetables.GET("/versions/:id/events", internalmiddleware.RBAC(string(models.RoleTeacher), string(models.RoleAdmin), string(models.RoleSuperAdmin)), timetableHandler.ListEvents)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
