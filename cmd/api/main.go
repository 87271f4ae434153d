package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"placementhub/internal/app"
	"placementhub/internal/config"
	"placementhub/internal/database"
	"placementhub/internal/domain/admin"
	apphttp "placementhub/internal/http"
	"placementhub/internal/http/handlers"
	"placementhub/internal/http/metrics"
	httpmw "placementhub/internal/http/middleware"
	"placementhub/internal/http/response"
	"placementhub/internal/moderation"
	"placementhub/internal/observability"
	"placementhub/internal/repository/postgres"
	"placementhub/internal/security"
	"placementhub/internal/sweep"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	experienceRepo := postgres.NewExperienceRepository(db)
	updateRepo := postgres.NewUpdateRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	directory := admin.NewAllowList(cfg.SuperAdminEmail, adminRepo)
	moderationClient := moderation.NewClient(moderation.Config{
		Endpoint: cfg.ModerationAPIURL,
		Model:    cfg.ModerationModel,
		APIKey:   cfg.ModerationAPIKey,
	})

	experienceService := app.NewExperienceService(experienceRepo, analyticsRepo)
	updateService := app.NewUpdateService(updateRepo, moderationClient, analyticsRepo, logger, cfg.AutoApprovalDelay)

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	experienceHandler := handlers.NewExperienceHandler(experienceService, limiter)
	updateHandler := handlers.NewUpdateHandler(updateService)
	adminHandler := handlers.NewAdminHandler(directory, adminRepo)
	middleware := httpmw.NewAuthMiddleware(jwtProvider)

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		ExperienceHandler: experienceHandler,
		UpdateHandler:     updateHandler,
		AdminHandler:      adminHandler,
		MetricsHandler:    handlers.NewMetricsHandler(collector),
		AuthMiddleware:    middleware,
		AdminDirectory:    directory,
		Metrics:           collector,
		RequestTimeout:    cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	sweeper := sweep.New(updateRepo, moderationClient, logger, cfg.SweepInterval, cfg.AutoApprovalDelay)
	sweeper.Start(sweepCtx)

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sweeper.Stop()
	cancelSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
