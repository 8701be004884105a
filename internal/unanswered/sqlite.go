package unanswered

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/StoryMesh/CharacterChat/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteRecorder appends unanswered records to an SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates an SQLite-backed recorder. The DSN is a file path
// to the database; its directory is created if missing.
func NewSQLiteRecorder(opts ...Option) (*SQLiteRecorder, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DSN), dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("SQLite ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("unanswered.NewSQLiteRecorder: recorder ready", "dsn_set", cfg.DSN != "")
	return &SQLiteRecorder{db: db}, nil
}

// Record inserts one record.
func (r *SQLiteRecorder) Record(ctx context.Context, rec models.UnansweredRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO unanswered_questions (ts, character, message, reason) VALUES (?, ?, ?, ?)",
		rec.Timestamp, rec.Character, rec.Message, rec.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert unanswered record: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
