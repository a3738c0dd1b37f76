package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/UnknownOlympus/athena/internal/api"
	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/mail"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/server"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	"github.com/UnknownOlympus/athena/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)
	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		fatal(logger, "Failed to connect to DB", err)
	}
	defer dtb.Close()

	blobs, err := storage.NewMinioStore(ctx, cfg.Storage)
	if err != nil {
		fatal(logger, "Failed to connect to blob store", err)
	}

	rdb, err := auth.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		fatal(logger, "Failed to connect to Redis", err)
	}
	defer rdb.Close()
	codes := auth.NewRedisCodeStore(rdb)

	employeeRepo := repository.NewEmployeeRepository(dtb, appMetrics)
	userRepo := repository.NewUserRepository(dtb, appMetrics)
	staff := employees.NewStaff(logger, employeeRepo, blobs, appMetrics, cfg.Storage.KeyPrefix)
	provider := auth.NewProvider(logger, userRepo, codes, mail.NewSMTPMailer(cfg.Mail, logger), appMetrics, auth.Options{
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		TokenTTL:   cfg.Auth.TokenTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
		ResetURL:   cfg.Auth.ResetURL,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	handler := api.New(logger, staff, provider, appMetrics, api.Options{
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		RequireToken: cfg.Auth.RequireToken,
	})
	health := server.NewHealthChecker(logger,
		server.Check{Name: "database", Pinger: dtb},
		server.Check{Name: "blob_store", Pinger: blobs},
		server.Check{Name: "redis", Pinger: codes},
	)

	var wgr sync.WaitGroup
	wgr.Add(2)

	go func() {
		defer wgr.Done()
		if serveErr := server.StartMonitoringServer(ctx, logger, reg, health, cfg.HTTP.MonitoringPort); serveErr != nil {
			logger.ErrorContext(ctx, "Monitoring server failed", sl.Err(serveErr))
		}
	}()

	go func() {
		defer wgr.Done()
		defer stop()
		if serveErr := server.Serve(ctx, logger, "api", server.New(cfg.HTTP.Port, handler)); serveErr != nil {
			logger.ErrorContext(ctx, "API server failed", sl.Err(serveErr))
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "port", cfg.HTTP.Port)

	wgr.Wait()
	handler.Wait()

	logger.InfoContext(context.Background(), "Application stopped gracefully...")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, sl.Err(err))
	os.Exit(1)
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: false,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
				" Please specify the value of `env`: local, development, production")
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
