package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// Querier is the subset of pgxpool.Pool the repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func InitDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("[DB] DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("[DB] Unable to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[DB] Failed to ping PostgreSQL: %w", err)
	}

	slog.Info("[DB] Connected to PostgreSQL successfully")
	return pool, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sentiment_categories (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '',
	is_active   BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS sentiment_keywords (
	id          BIGSERIAL PRIMARY KEY,
	keyword     TEXT NOT NULL CHECK (keyword <> ''),
	type        TEXT NOT NULL CHECK (type IN ('positive', 'negative', 'strong_negative')),
	weight      DOUBLE PRECISION NOT NULL DEFAULT 1.0 CHECK (weight BETWEEN 0.1 AND 2.0),
	language    TEXT NOT NULL DEFAULT 'vi',
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	category_id BIGINT REFERENCES sentiment_categories(id) ON DELETE SET NULL,
	created_by  TEXT NOT NULL DEFAULT '',
	updated_by  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (keyword, type, language)
);

CREATE INDEX IF NOT EXISTS sentiment_keywords_language_active_idx
	ON sentiment_keywords (language, is_active);
`

// Migrate creates the keyword tables when they do not exist yet.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("[DB] Migration failed: %w", err)
	}
	slog.Info("[DB] Keyword schema is up to date")
	return nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUndefinedTable reports whether err comes from querying a table that was
// not migrated yet.
func IsUndefinedTable(err error) bool {
	return pgErrorCode(err) == pgUndefinedTable
}
