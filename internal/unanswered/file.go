package unanswered

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

// DefaultFilePath is the default JSONL log location.
const DefaultFilePath = "unanswered.jsonl"

// filePermissions for the log file and its directory.
const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// FileRecorder appends one JSON object per line to a log file. The file is
// lazily created on first append; concurrent appends rely on O_APPEND
// atomicity only.
type FileRecorder struct {
	path string
}

// NewFileRecorder creates a JSONL file recorder.
func NewFileRecorder(opts ...Option) *FileRecorder {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	path := cfg.Path
	if path == "" {
		path = DefaultFilePath
	}
	slog.Debug("unanswered.NewFileRecorder: recorder configured", "path", path)
	return &FileRecorder{path: path}
}

// Record appends one record as a JSON line.
func (r *FileRecorder) Record(ctx context.Context, rec models.UnansweredRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal unanswered record: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to open unanswered log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append unanswered record: %w", err)
	}
	return nil
}
