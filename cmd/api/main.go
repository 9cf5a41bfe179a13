package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := appHTTP.NewLogger(os.Stdout, cfg.App.Env, level)
	slog.SetDefault(logger)

	rules, err := cfg.PayrollRules()
	if err != nil {
		logger.Error("Invalid payroll rules", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)

	scheduler := cron.NewScheduler(logger)

	var payslipCache payroll.PayslipCache
	switch cfg.Payroll.CacheBackend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		redisCache := cache.NewRedis(client, cfg.Payroll.CacheTTL)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Warn("Redis unreachable at startup, payslips will be recomputed until it recovers", "addr", cfg.RedisAddr(), "error", err)
		}
		payslipCache = redisCache
		cron.NewCacheJobs(nil, redisCache, cfg.Cron.CacheEvictionInterval, logger).RegisterJobs(scheduler)
	default:
		memoryCache := cache.NewMemory(cfg.Payroll.CacheTTL)
		payslipCache = memoryCache
		cron.NewCacheJobs(memoryCache, nil, cfg.Cron.CacheEvictionInterval, logger).RegisterJobs(scheduler)
	}

	reconciler := attendanceService.NewReconciler(logger)
	aggregator := payrollService.NewAggregator(reconciler)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, policyRepo, reconciler, cfg.Location())
	payrollSvc := payrollService.NewPayrollService(
		employeeRepo,
		attendanceRepo,
		policyRepo,
		aggregator,
		payslipCache,
		rules,
		logger,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{LogLevel: level},
		logger,
		JWTService,
		attendanceHandler,
		payrollHandler,
		db.Ready,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running", "addr", server.Addr, "cache_backend", cfg.Payroll.CacheBackend, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
