package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecelabs/lims-backend/internal/api"
	"github.com/ecelabs/lims-backend/internal/api/handlers"
	"github.com/ecelabs/lims-backend/internal/auth"
	"github.com/ecelabs/lims-backend/internal/config"
	"github.com/ecelabs/lims-backend/internal/db"
	"github.com/ecelabs/lims-backend/internal/logger"
	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/middleware"
	"github.com/ecelabs/lims-backend/internal/repository/postgres"
	"github.com/ecelabs/lims-backend/internal/services"
	"github.com/ecelabs/lims-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") != "false" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	metrics.Init()

	store := postgres.NewStore(pool)
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefresh, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	wp := worker.NewPool(4)
	defer wp.Stop()

	userSvc := services.NewUserService(store, tm)
	jobSvc := services.NewJobService(store)
	sampleSvc := services.NewSampleService(store)
	testSvc := services.NewTestService(store)
	reportSvc := services.NewReportService(store, wp)
	auditSvc := services.NewAuditService(store)

	router := api.NewRouter(api.Deps{
		Auth:    handlers.NewAuthHandler(userSvc, tm),
		Users:   handlers.NewUsersHandler(userSvc),
		Jobs:    handlers.NewJobsHandler(jobSvc),
		Samples: handlers.NewSamplesHandler(sampleSvc, testSvc),
		Tests:   handlers.NewTestsHandler(testSvc),
		Reports: handlers.NewReportsHandler(reportSvc),
		Audit:   handlers.NewAuditHandler(auditSvc),
		AuthMW:  middleware.NewAuthMiddleware(tm),
		RateRPS: cfg.RateRPS,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
