package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/hyowon-dev/sugang-api/api/swagger"
	"github.com/hyowon-dev/sugang-api/internal/handler"
	"github.com/hyowon-dev/sugang-api/internal/middleware"
	"github.com/hyowon-dev/sugang-api/internal/repository"
	"github.com/hyowon-dev/sugang-api/internal/service"
	"github.com/hyowon-dev/sugang-api/pkg/cache"
	"github.com/hyowon-dev/sugang-api/pkg/config"
	"github.com/hyowon-dev/sugang-api/pkg/database"
	appErrors "github.com/hyowon-dev/sugang-api/pkg/errors"
	"github.com/hyowon-dev/sugang-api/pkg/logger"
	corsmiddleware "github.com/hyowon-dev/sugang-api/pkg/middleware/cors"
	ratelimitmiddleware "github.com/hyowon-dev/sugang-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/hyowon-dev/sugang-api/pkg/middleware/requestid"
	"github.com/hyowon-dev/sugang-api/pkg/response"
)

// @title Sugang API
// @version 1.0.0
// @description Course registration service
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		redisClient = nil
	}

	accountRepo := repository.NewAccountRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(accountRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.Session.Secret,
		Expiration: cfg.Session.Expiration,
		Issuer:     cfg.Session.Issuer,
	})
	catalogSvc := service.NewCatalogService(lectureRepo, departmentRepo, professorRepo, redisClient, cfg.Catalog.CacheTTL, logr, metricsSvc)
	registrationSvc := service.NewRegistrationService(registrationRepo, lectureRepo, service.RegistrationWindow{
		Opens:  cfg.Registration.WindowOpens,
		Closes: cfg.Registration.WindowCloses,
	}, cfg.Registration.MaxCredits, nil, logr, metricsSvc)

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusServiceUnavailable, "database unreachable"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/departments", catalogHandler.Departments)
		api.GET("/professors", catalogHandler.Professors)
		api.GET("/lectures", catalogHandler.Lectures)

		registrations := api.Group("/registrations")
		registrations.Use(middleware.Session(authSvc))
		registrations.Use(ratelimitmiddleware.PerIP(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
		{
			registrations.GET("", registrationHandler.List)
			registrations.POST("", registrationHandler.Create)
			registrations.GET("/export", registrationHandler.Export)
			registrations.DELETE("/:lectureId", registrationHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
