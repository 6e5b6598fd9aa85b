package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ChristianJLC/web/internal/config"
	"github.com/ChristianJLC/web/internal/infra"
	"github.com/ChristianJLC/web/internal/observability"
	"github.com/ChristianJLC/web/internal/router"
	"github.com/ChristianJLC/web/internal/worker"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Debug:        !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to access sql.DB")
	}

	metrics := observability.NewMetrics()
	metrics.Registerer().MustRegister(collectors.NewDBStatsCollector(sqlDB, "inventario"))

	// Redis is optional: without it tokens cannot be revoked and alerts are off.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = infra.NewRedis(cfg.RedisURL); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL vacio: revocacion de sesiones y alertas de stock deshabilitadas")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Low-stock e-mail alerts need Redis, SMTP and a recipient.
	opts := router.Options{Metrics: metrics}
	var workers *sync.WaitGroup
	mailer := infra.NewMailer(cfg)
	if rdb != nil && mailer.Configured() && cfg.AlertEmailTo != "" {
		breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
		handlers := &worker.WorkerHandlers{
			AlertaStock: worker.NewAlertaStockWorker(mailer, breaker, []string{cfg.AlertEmailTo}, cfg.NombreNegocio),
		}
		workers = worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
		opts.Dispatcher = worker.NewDispatcher(rdb)
		opts.MailBreaker = breaker
		log.Info().Int("workers", cfg.WorkerPoolSize).Msg("alertas de stock habilitadas")
	}

	r := router.New(cfg, db, rdb, opts)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("inventario backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM
	const shutdownTimeout = 15 * time.Second
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
		"workers": func(ctx context.Context) error {
			cancel()
			if workers != nil {
				workers.Wait()
			}
			return nil
		},
		"redis": func(ctx context.Context) error {
			if rdb == nil {
				return nil
			}
			return rdb.Close()
		},
		"postgres": func(ctx context.Context) error {
			return sqlDB.Close()
		},
	})
	code := <-wait
	log.Info().Int("exit_code", code).Msg("server exited")
	os.Exit(code)
}
