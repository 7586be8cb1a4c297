// cmd/planner-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"unipath-planner/internal/common/camunda"
	"unipath-planner/internal/common/config"
	"unipath-planner/internal/common/database"
	commonhttp "unipath-planner/internal/common/http"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/observability"
	"unipath-planner/internal/export/pdf"
	"unipath-planner/internal/export/slides"
	"unipath-planner/internal/generator"
	"unipath-planner/internal/models"
	"unipath-planner/internal/notifier"
	"unipath-planner/internal/planner"
	"unipath-planner/internal/render/screen"
	"unipath-planner/internal/server"
	"unipath-planner/internal/store"

	gp "unipath-planner/internal/workers/planning/generate-plan"
	nl "unipath-planner/internal/workers/planning/notify-lead"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting planner server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("provider", cfg.Generation.Provider),
		zap.String("channel", cfg.Notifier.Channel),
		zap.String("storage", cfg.Storage.Driver),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()
	if err := obs.EnableTracing(cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio); err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	ctx := context.Background()

	// --- Plan store ---
	var st store.Store
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Storage.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		st = store.NewRedisStore(redis.GetClient(), cfg.Storage.KeyPrefix)
		zapLog.Info("Redis connected successfully")
	default:
		st = store.NewMemoryStore()
	}

	// --- Generation ---
	backend, err := generator.NewBackend(ctx, cfg.Generation)
	if err != nil {
		zapLog.Fatal("generation backend", zap.Error(err))
	}
	if !backend.Configured() {
		// Not fatal: every submission answers with the configuration message.
		zapLog.Warn("generation credential missing", zap.String("provider", backend.Name()))
	}
	requester := generator.NewRequester(backend, cfg.GenerationTimeout(), log)

	// --- Lead notification ---
	channel, err := notifier.NewChannel(ctx, cfg.Notifier, commonhttp.NewClient(config.GetDuration(cfg.Notifier.Timeout)))
	if err != nil {
		zapLog.Fatal("notifier channel", zap.Error(err))
	}
	leads := notifier.New(channel, config.GetDuration(cfg.Notifier.Timeout), log)

	// --- Rendering and export ---
	catalog := models.DefaultCatalog()
	renderer := screen.MustNew()
	printer := pdf.NewRodPrinter(cfg.Export.ChromeBin, cfg.Export.ControlURL)
	defer printer.Close()

	plans := planner.NewService(requester, st, leads, log).WithRecorder(obs)

	srv := server.New(server.Options{
		Planner:             plans,
		Catalog:             catalog,
		Screen:              renderer,
		PDF:                 pdf.NewExporter(renderer, printer, config.GetDuration(cfg.Export.Timeout), log),
		Slides:              slides.NewExporter(log),
		AllowedOrigins:      cfg.HTTP.AllowedOrigins,
		GeneratorConfigured: backend.Configured,
		Logger:              log,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	// --- Optional Zeebe workers ---
	var zeebe *camunda.Client
	var jobWorkers []worker.JobWorker
	if cfg.WorkflowEnabled() {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		// The process announces leads itself through notify-lead.
		silent := notifier.New(notifier.NoneChannel{}, 0, log)
		workflowPlans := planner.NewService(requester, st, silent, log).WithRecorder(obs)

		genCfg := config.GetWorkerConfig(cfg, gp.TaskType)
		genHandler := gp.NewHandler(gp.LoadConfig(genCfg), workflowPlans, log)
		if w := camunda.StartWorker(zeebe.GetClient(), gp.TaskType, genCfg, genHandler.Handle, zapLog); w != nil {
			jobWorkers = append(jobWorkers, w)
		}

		notifyCfg := config.GetWorkerConfig(cfg, nl.TaskType)
		notifyHandler := nl.NewHandler(nl.LoadConfig(notifyCfg), leads, log)
		if w := camunda.StartWorker(zeebe.GetClient(), nl.TaskType, notifyCfg, notifyHandler.Handle, zapLog); w != nil {
			jobWorkers = append(jobWorkers, w)
		}
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	for _, w := range jobWorkers {
		w.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := leads.Wait(shutdownCtx); err != nil {
		zapLog.Warn("pending lead notifications abandoned", zap.Error(err))
	}

	zapLog.Info("Planner server stopped gracefully")
}
