package unanswered

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/StoryMesh/CharacterChat/internal/models"
	_ "github.com/lib/pq"
)

// Connection pool settings for the Postgres recorder.
const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresRecorder appends unanswered records to a PostgreSQL database.
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder creates a PostgreSQL-backed recorder from a DSN.
func NewPostgresRecorder(opts ...Option) (*PostgresRecorder, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("Postgres ping failed: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("unanswered.NewPostgresRecorder: recorder ready")
	return &PostgresRecorder{db: db}, nil
}

// Record inserts one record.
func (r *PostgresRecorder) Record(ctx context.Context, rec models.UnansweredRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO unanswered_questions (ts, character, message, reason) VALUES ($1, $2, $3, $4)",
		rec.Timestamp, rec.Character, rec.Message, rec.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert unanswered record: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}
