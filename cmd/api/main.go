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

	"rcvj/internal/app"
	"rcvj/internal/config"
	"rcvj/internal/database"
	apphttp "rcvj/internal/http"
	"rcvj/internal/http/handlers"
	"rcvj/internal/http/metrics"
	httpmw "rcvj/internal/http/middleware"
	"rcvj/internal/http/response"
	"rcvj/internal/observability"
	"rcvj/internal/repository/postgres"
	"rcvj/internal/security"
	"rcvj/internal/storage"
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

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(startupCtx, db); err != nil {
		log.Fatal(err)
	}
	if err := database.SeedAdmin(startupCtx, db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}
	startupCancel()

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to init upload storage: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	jobRepo := postgres.NewJobRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)

	authService := app.NewAuthService(userRepo, jwtProvider, logger, cfg.TokenTTL)
	jobService := app.NewJobService(jobRepo)
	applicationService := app.NewApplicationService(applicationRepo, store, logger)

	var rateLimiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		rateLimiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	authHandler := handlers.NewAuthHandler(authService, rateLimiter)
	jobHandler := handlers.NewJobHandler(jobService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, rateLimiter)
	uploadsHandler := handlers.NewUploadsHandler(store)
	middleware := httpmw.NewAuthMiddleware(jwtProvider, authService)

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:        authHandler,
		JobHandler:         jobHandler,
		ApplicationHandler: applicationHandler,
		UploadsHandler:     uploadsHandler,
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		AuthMiddleware:     middleware,
		Metrics:            collector,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
