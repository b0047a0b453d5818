// Package main grades a screener export (CSV or XLSX) and writes the reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"fundamental-grader/internal/config"
	"fundamental-grader/internal/domain"
	"fundamental-grader/internal/grading"
	"fundamental-grader/internal/observability"
	"fundamental-grader/internal/pipeline"
	chstore "fundamental-grader/internal/storage/clickhouse"
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
	input := flag.String("input", cfg.Input, "Input CSV or XLSX file")
	outputDir := flag.String("output-dir", cfg.OutputDir, "Output directory for generated files")
	extended := flag.Bool("extended", cfg.Extended, "Use the extended variant (KPI category, normalized ratings)")
	normalize := flag.Bool("normalize", cfg.Normalize, "Rescale overall ratings to 0-100 (implied by --extended)")
	workers := flag.Int("workers", cfg.Workers, "Concurrent grading workers")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (enables persistence with --clickhouse-dsn)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string")
	useFixtures := flag.Bool("use-fixtures", false, "Grade the built-in demo dataset instead of --input")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	flag.Parse()

	log := observability.NewLogger(*logLevel, cfg.LogPretty)

	if *input == "" && !*useFixtures {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	variant := domain.VariantCore
	if *extended {
		variant = domain.VariantExtended
	}
	opts := grading.DefaultOptions(variant)
	opts.Normalize = opts.Normalize || *normalize
	opts.Workers = *workers

	engine, err := grading.NewEngine(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid grading catalog")
	}

	p := pipeline.NewGradingPipeline(engine, *outputDir).WithLogger(log)

	if *postgresDSN != "" && *clickhouseDSN != "" {
		stores, cleanup, err := openStores(ctx, *postgresDSN, *clickhouseDSN, cfg.PostgresMaxConns, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to databases")
		}
		defer cleanup()
		p = p.WithStores(stores)
	}

	out, err := run(ctx, p, variant, *useFixtures, *input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running pipeline: %v\n", err)
		os.Exit(1)
	}

	printSummary(out)
}

// run grades either the built-in demo dataset or the input file.
func run(ctx context.Context, p *pipeline.GradingPipeline, variant domain.Variant, useFixtures bool, input string) (*pipeline.RunResult, error) {
	if !useFixtures {
		return p.RunFile(ctx, input)
	}
	ds, err := pipeline.DemoDataset(variant)
	if err != nil {
		return nil, fmt.Errorf("build demo dataset: %w", err)
	}
	return p.Run(ctx, ds)
}

func printSummary(out *pipeline.RunResult) {
	fmt.Printf("Graded %d companies (run %s)\n", len(out.Result.Companies), out.RunID)
	if !out.Sufficiency.AllPass {
		fmt.Println("Data sufficiency warnings:")
		for _, c := range out.Sufficiency.Checks {
			if !c.Pass {
				fmt.Printf("  - %s: %s (want %s)\n", c.Name, c.Actual, c.Threshold)
			}
		}
	}
	for _, f := range out.Files {
		fmt.Printf("  - %s\n", f)
	}
	if out.Persisted {
		fmt.Println("Results persisted.")
	}
}

// openStores connects to PostgreSQL and ClickHouse, applies migrations and creates stores.
func openStores(ctx context.Context, postgresDSN, clickhouseDSN string, maxConns int32, log zerolog.Logger) (*pipeline.Stores, func(), error) {
	pool, err := pgstore.NewPool(ctx, postgresDSN, pgstore.PoolOptions{MaxConns: maxConns})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

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
