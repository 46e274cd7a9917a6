package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academy-billing-api/api/swagger"
	"github.com/noah-isme/academy-billing-api/internal/handler"
	"github.com/noah-isme/academy-billing-api/internal/middleware"
	"github.com/noah-isme/academy-billing-api/internal/repository"
	"github.com/noah-isme/academy-billing-api/internal/service"
	"github.com/noah-isme/academy-billing-api/pkg/cache"
	"github.com/noah-isme/academy-billing-api/pkg/config"
	"github.com/noah-isme/academy-billing-api/pkg/database"
	"github.com/noah-isme/academy-billing-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-billing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-billing-api/pkg/middleware/requestid"
)

// @title Academy Billing API
// @version 0.1.0
// @description Payment confirmation reconciliation for course enrollments
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ContextTTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	cohortRepo := repository.NewCohortRepository(db)

	providerClient := service.NewPaymentProviderClient(cfg.Provider)
	matriculaClient := service.NewMatriculaClient(cfg.Matricula)

	resolver := service.NewStatusResolver(providerClient, metricsSvc, logr)
	matriculaExec := service.NewMatriculaExecutor(matriculaClient, metricsSvc, logr)
	couponExec := service.NewCouponExecutor(couponRepo, metricsSvc, logr)
	reconciliationSvc := service.NewReconciliationService(enrollmentRepo, invoiceRepo, cohortRepo, resolver, matriculaExec, couponExec, cacheSvc, metricsSvc, logr)

	validate := validator.New()
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, invoiceRepo, logr)
	exportSvc := service.NewExportService(enrollmentSvc)
	couponSvc := service.NewCouponService(couponRepo, validate, logr)
	tokenSvc := service.NewTokenService(cfg.JWT)

	paymentHandler := handler.NewPaymentHandler(reconciliationSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc)
	couponHandler := handler.NewCouponHandler(couponSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/payments/confirmation/:enrollmentId", paymentHandler.Confirm)

	if cfg.Admin.Enabled {
		admin := api.Group("")
		admin.Use(middleware.JWT(tokenSvc))
		admin.GET("/enrollments/:id", enrollmentHandler.Get)
		admin.GET("/enrollments/:id/invoices/export", enrollmentHandler.ExportInvoices)
		admin.GET("/enrollments/:id/receipt", enrollmentHandler.Receipt)
		admin.GET("/coupons/:code", couponHandler.Get)
		admin.POST("/coupons", couponHandler.Create)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
