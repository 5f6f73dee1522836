package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	user_id        TEXT        NOT NULL,
	todo_id        TEXT        NOT NULL,
	name           TEXT        NOT NULL,
	due_date       TEXT        NOT NULL DEFAULT '',
	done           BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL,
	attachment_url TEXT        NOT NULL DEFAULT '',
	PRIMARY KEY (user_id, todo_id)
);
CREATE INDEX IF NOT EXISTS todos_user_created_idx ON todos (user_id, created_at DESC);
`

// Open creates the Postgres connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBPoolSize)
	db.SetMaxIdleConns(cfg.DBPoolSize / 2)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info(ctx, "Database pool initialized", "max_open", cfg.DBPoolSize)
	return db, nil
}

// MigrateOrCreateSchema creates the todos table and its index if missing.
func MigrateOrCreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	logger.Info(ctx, "Database schema ensured")
	return nil
}
