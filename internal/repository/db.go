package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path        string
	DialTimeout time.Duration
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	file_size     INTEGER NOT NULL,
	media_type    TEXT NOT NULL,
	status        TEXT NOT NULL,
	uploaded_at   TIMESTAMP NOT NULL,
	completed_at  TIMESTAMP,
	error_message TEXT
);

CREATE TABLE IF NOT EXISTS extraction_records (
	document_id       TEXT PRIMARY KEY REFERENCES documents(id),
	canonical_json    TEXT NOT NULL,
	raw_response_json TEXT NOT NULL,
	semantic_json     TEXT NOT NULL,
	created_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status, uploaded_at);
`

// Open opens (or creates) the SQLite database and applies the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening database", "path", cfg.Path)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	// modernc sqlite serializes writes; one writer connection avoids
	// SQLITE_BUSY under concurrent pipeline completions.
	db.SetMaxOpenConns(1)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		logger.Error("schema migration failed", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("database ready")
	return db, nil
}

// Close closes the database connection gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database closed")
}
