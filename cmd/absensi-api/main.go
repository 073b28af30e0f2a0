package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/absensi-karyawan/api/swagger"
	"github.com/noah-isme/absensi-karyawan/internal/handler"
	internalmiddleware "github.com/noah-isme/absensi-karyawan/internal/middleware"
	"github.com/noah-isme/absensi-karyawan/internal/repository"
	"github.com/noah-isme/absensi-karyawan/internal/service"
	"github.com/noah-isme/absensi-karyawan/pkg/cache"
	"github.com/noah-isme/absensi-karyawan/pkg/config"
	"github.com/noah-isme/absensi-karyawan/pkg/database"
	"github.com/noah-isme/absensi-karyawan/pkg/export"
	"github.com/noah-isme/absensi-karyawan/pkg/logger"
	corsmiddleware "github.com/noah-isme/absensi-karyawan/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/absensi-karyawan/pkg/middleware/requestid"
	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

// @title Absensi Karyawan API
// @version 1.0.0
// @description Employee attendance and production tracking on top of a spreadsheet backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		logr.Warn("unknown timezone, falling back to UTC+7", zap.String("timezone", cfg.Attendance.Timezone), zap.Error(err))
		loc = time.FixedZone("UTC+7", 7*60*60)
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var store repository.RowStore
	switch cfg.Backend.Driver {
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close()
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			logr.Fatal("failed to prepare schema", zap.Error(err))
		}
		store = repository.NewPostgresRowStore(db, cfg.Backend.EmployeeSheet)
		checks["database"] = db.PingContext
	default:
		if cfg.Sheets.URL == "" {
			logr.Fatal("SHEETS_URL is required for the sheets backend")
		}
		store = sheets.NewClient(sheets.Config{
			BaseURL:   cfg.Sheets.URL,
			Timeout:   cfg.Sheets.Timeout,
			RateLimit: cfg.Sheets.RateLimit,
			RateBurst: cfg.Sheets.RateBurst,
		}, nil, metrics, logr)
	}

	var cacheRepo service.CacheRepository
	switch cfg.Cache.Driver {
	case config.CacheNone:
	case config.CacheRedis:
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		redisRepo := repository.NewRedisCacheRepository(client, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		checks["cache"] = redisRepo.Ping
	default:
		cacheRepo = repository.NewMemoryCacheRepository(10 * time.Minute)
	}

	validate := validator.New()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr)
	employeeSvc := service.NewEmployeeService(
		repository.NewEmployeeRepository(store, cfg.Backend.EmployeeSheet, logr),
		validate,
		logr,
	)
	attendanceSvc := service.NewAttendanceService(
		repository.NewAttendanceRepository(store, cfg.Backend.AttendanceSheet, loc, logr),
		employeeSvc,
		cacheSvc,
		metrics,
		validate,
		loc,
		logr,
	)
	exportSvc := service.NewExportService(logr, export.NewCSVExporter(), export.NewPDFExporter())

	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	employees := api.Group("/employees")
	employees.GET("", employeeHandler.List)
	employees.POST("", employeeHandler.Create)

	attendance := api.Group("/attendance")
	attendance.POST("", attendanceHandler.Record)
	attendance.GET("/day", attendanceHandler.Day)
	attendance.POST("/day", attendanceHandler.SaveDay)
	attendance.GET("/daily", attendanceHandler.Daily)
	attendance.GET("/daily/export", attendanceHandler.DailyExport)
	attendance.GET("/monthly", attendanceHandler.Monthly)
	attendance.GET("/monthly/export", attendanceHandler.MonthlyExport)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.Driver, "cache", cfg.Cache.Driver, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
