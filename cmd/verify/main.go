// Package main re-grades a stored run and reports any divergence from its stored grades.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fundamental-grader/internal/config"
	"fundamental-grader/internal/observability"
	chstore "fundamental-grader/internal/storage/clickhouse"
	pgstore "fundamental-grader/internal/storage/postgres"
	"fundamental-grader/internal/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	runID := flag.String("run-id", "", "Run ID to verify (required)")
	ticker := flag.String("ticker", "", "Verify a single company of the run")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	log := observability.NewLogger(cfg.LogLevel, cfg.LogPretty)

	if *runID == "" {
		log.Fatal().Msg("--run-id is required")
	}
	if *postgresDSN == "" || *clickhouseDSN == "" {
		log.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN, pgstore.PoolOptions{MaxConns: cfg.PostgresMaxConns})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	chConn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to clickhouse")
	}
	defer chConn.Close()

	verifier := verification.NewRegradeVerifier(verification.RegradeVerifierOptions{
		RunStore:     pgstore.NewRunStore(pool),
		CompanyStore: pgstore.NewCompanyStore(pool),
		GradeStore:   chstore.NewGradeStore(chConn),
		Workers:      cfg.Workers,
		Logger:       &log,
	})

	var report *verification.VerificationReport
	if *ticker != "" {
		result, err := verifier.VerifyCompany(ctx, *runID, *ticker)
		if err != nil {
			log.Fatal().Err(err).Str("ticker", *ticker).Msg("verify company")
		}
		report = &verification.VerificationReport{RunID: *runID, TotalCompanies: 1, Results: []verification.VerificationResult{*result}}
		if result.Match {
			report.MatchedCompanies = 1
		} else {
			report.DivergentCompanies = 1
		}
	} else {
		report, err = verifier.VerifyRun(ctx, *runID)
		if err != nil {
			log.Fatal().Err(err).Msg("verify run")
		}
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal().Err(err).Msg("encode report")
		}
	} else {
		printReport(report)
	}

	if !report.Match() {
		os.Exit(2)
	}
}

func printReport(r *verification.VerificationReport) {
	fmt.Printf("Run %s: %d companies, %d matched, %d divergent\n",
		r.RunID, r.TotalCompanies, r.MatchedCompanies, r.DivergentCompanies)
	for _, res := range r.Results {
		if res.Match {
			continue
		}
		fmt.Printf("  %s (stored %.2f, regraded %.2f)\n", res.Ticker, res.StoredRating, res.RegradedRating)
		for _, d := range res.Divergences {
			fmt.Printf("    %s: stored=%v regraded=%v\n", d.Field, d.Expected, d.Actual)
		}
	}
}
