package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fundamental-grader/internal/storage/postgres"
)

// RunPostgresMigrations applies the company_datasets and grading_runs schema.
// Every file is idempotent, so this runs on each start.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool, log zerolog.Logger) error {
	files, err := readMigrations(FS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		start := time.Now()
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
		log.Info().
			Str("database", "postgres").
			Str("file", m.Name).
			Dur("elapsed", time.Since(start)).
			Msg("migration applied")
	}
	return nil
}
