// Package main provides the grading HTTP service:
// - POST /api/v1/grade: grade an uploaded CSV or XLSX screener export
// - GET /api/v1/runs/{id}: stored grades of a run
// - GET /ws: live pipeline events
// - GET /metrics, GET /health
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"fundamental-grader/internal/config"
	"fundamental-grader/internal/observability"
	"fundamental-grader/internal/pipeline"
	chstore "fundamental-grader/internal/storage/clickhouse"
	"fundamental-grader/internal/storage/memory"
	"fundamental-grader/internal/storage/migrations"
	pgstore "fundamental-grader/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (config values as defaults)
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", !cfg.UsePersistence(), "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	log := observability.Component(observability.NewLogger(cfg.LogLevel, cfg.LogPretty), "server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, cfg.PostgresMaxConns, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(cfg.MetricsNamespace, reg)
	api := &API{
		cfg:     *cfg,
		stores:  stores,
		hub:     NewHub(log, metrics),
		log:     log,
		metrics: metrics,
		gather:  observability.HandlerFor(reg),
		clock:   func() time.Time { return time.Now().UTC() },
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", *addr).Bool("memory", *useMemory).Msg("starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server error")
	}
	log.Info().Msg("shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, maxConns int32, log zerolog.Logger) (*pipeline.Stores, func(), error) {
	if useMemory {
		stores := &pipeline.Stores{
			Companies: memory.NewCompanyStore(),
			Runs:      memory.NewRunStore(),
			Grades:    memory.NewGradeStore(),
		}
		return stores, func() {}, nil
	}

	if postgresDSN == "" || clickhouseDSN == "" {
		return nil, nil, errors.New("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN, pgstore.PoolOptions{MaxConns: maxConns})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN, log)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	stores := &pipeline.Stores{
		Companies: pgstore.NewCompanyStore(pool),
		Runs:      pgstore.NewRunStore(pool),
		Grades:    chstore.NewGradeStore(chConn),
	}
	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}
