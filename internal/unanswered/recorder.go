// Package unanswered provides append-only sinks for refusal and failure
// events. Backends: JSONL file (default), SQLite, and PostgreSQL.
//
// Recorder failures must never affect the chat response; callers log and
// swallow returned errors.
package unanswered

import (
	"context"
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

// Recorder appends unanswered-question records.
type Recorder interface {
	Record(ctx context.Context, rec models.UnansweredRecord) error
}

// Opts holds configuration options for recorder construction.
type Opts struct {
	Path string // JSONL file path for the file backend
	DSN  string // database DSN; selects the sqlite or postgres backend
}

// Option defines a configuration option for recorder construction.
type Option func(*Opts)

// WithPath sets the JSONL file path.
func WithPath(path string) Option {
	return func(o *Opts) { o.Path = path }
}

// WithDSN sets a database DSN; the backend is auto-detected from it.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-style DSNs and "sqlite"
// otherwise.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// New creates a recorder from options: a database backend when a DSN is
// configured, otherwise the JSONL file backend.
func New(opts ...Option) (Recorder, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN != "" {
		if DetectDSNType(cfg.DSN) == "postgres" {
			return NewPostgresRecorder(opts...)
		}
		return NewSQLiteRecorder(opts...)
	}
	return NewFileRecorder(opts...), nil
}
