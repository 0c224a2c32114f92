package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-admission-api/api/swagger"
	"github.com/noah-isme/sma-admission-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-admission-api/internal/middleware"
	"github.com/noah-isme/sma-admission-api/internal/models"
	"github.com/noah-isme/sma-admission-api/internal/repository"
	"github.com/noah-isme/sma-admission-api/internal/service"
	"github.com/noah-isme/sma-admission-api/pkg/cache"
	"github.com/noah-isme/sma-admission-api/pkg/config"
	"github.com/noah-isme/sma-admission-api/pkg/database"
	"github.com/noah-isme/sma-admission-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-admission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-admission-api/pkg/middleware/requestid"
)

// @title SMA Admission API
// @version 1.0.0
// @description Admission application synchronization engine
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	// The cache is an optimization for the stats endpoint; a missing Redis
	// must not keep the API from serving.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats caching disabled", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(redisClient, metricsSvc, logr)

	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	classRepo := repository.NewClassRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	classSvc := service.NewClassService(classRepo, logr)
	admissionSvc := service.NewAdmissionService(appRepo, classSvc, cacheSvc, nil, logr, cfg.Admission.StatsCacheTTL)

	authHandler := handler.NewAuthHandler(authSvc)
	admissionHandler := handler.NewAdmissionHandler(admissionSvc, metricsSvc)
	classHandler := handler.NewClassHandler(classSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("", internalmiddleware.JWT(authSvc))

	admissions := secured.Group("/admissions")
	admissions.POST("", internalmiddleware.Audit(userRepo, models.AuditActionCreate, "admission"), admissionHandler.Create)
	admissions.GET("", admissionHandler.List)
	admissions.GET("/stats", admissionHandler.Stats)
	if cfg.Admission.ExportEnabled {
		admissions.GET("/export", admissionHandler.ExportCSV)
	}
	admissions.GET("/:id", admissionHandler.Get)
	admissions.PATCH("/:id", internalmiddleware.Audit(userRepo, models.AuditActionUpdate, "admission"), admissionHandler.Update)
	admissions.DELETE("/:id", internalmiddleware.Audit(userRepo, models.AuditActionDelete, "admission"), admissionHandler.Delete)
	admissions.PUT("/:id/assignment", internalmiddleware.Audit(userRepo, models.AuditActionAssign, "admission"), admissionHandler.Assign)
	admissions.POST("/:id/submit", internalmiddleware.Audit(userRepo, models.AuditActionUpdate, "admission"), admissionHandler.Submit)
	admissions.POST("/:id/decision", internalmiddleware.Audit(userRepo, models.AuditActionUpdate, "admission"), admissionHandler.Decide)
	admissions.GET("/:id/summary.pdf", admissionHandler.SummaryPDF)

	classes := secured.Group("/classes")
	classes.GET("", classHandler.List)
	classes.GET("/:id/grades", classHandler.Grades)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
