package migrations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	chstore "fundamental-grader/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the DSN's database when missing, applies the
// company_grades schema and returns a connection bound to that database.
func RunClickhouseMigrations(ctx context.Context, dsn string, log zerolog.Logger) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureDatabase(ctx, dsn, dbName); err != nil {
		return nil, err
	}

	files, err := readMigrations(FS, "clickhouse")
	if err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	for _, m := range files {
		start := time.Now()
		n, err := applyClickhouse(ctx, conn, m)
		if err != nil {
			conn.Close()
			return nil, err
		}
		log.Info().
			Str("database", "clickhouse").
			Str("file", m.Name).
			Int("statements", n).
			Dur("elapsed", time.Since(start)).
			Msg("migration applied")
	}
	return conn, nil
}

func ensureDatabase(ctx context.Context, dsn, dbName string) error {
	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return fmt.Errorf("connect clickhouse admin: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+dbName); err != nil {
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	return nil
}

// applyClickhouse runs a file statement by statement; the driver rejects
// multi-statement Exec.
func applyClickhouse(ctx context.Context, conn *chstore.Conn, m migration) (int, error) {
	if err := validateNoSemicolonInStrings(m.SQL); err != nil {
		return 0, fmt.Errorf("validate migration %s: %w", m.Name, err)
	}
	stmts := splitStatements(m.SQL)
	for _, stmt := range stmts {
		if err := conn.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return len(stmts), nil
}

// splitStatements drops blank and "--" comment lines, then splits on ';'.
// Schema files must keep semicolons out of string literals and block
// comments; validateNoSemicolonInStrings enforces the first rule.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

var errSemicolonInString = errors.New("semicolon inside string literal")

func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			inString = !inString
		case ';':
			if inString {
				return errSemicolonInString
			}
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", errors.New("clickhouse dsn missing database")
	}
	return db, nil
}
