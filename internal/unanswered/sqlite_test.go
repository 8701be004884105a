package unanswered

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

func TestSQLiteRecorder_RecordAndQuery(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "unanswered.db")
	r, err := NewSQLiteRecorder(WithDSN(dsn))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder failed: %v", err)
	}
	defer r.Close()

	rec := models.UnansweredRecord{
		Timestamp: time.Now().UTC(),
		Character: "aria",
		Message:   "What lies beyond the reef?",
		Reason:    models.ReasonSafetyRefusal,
	}
	if err := r.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var character, message, reason string
	row := r.db.QueryRow("SELECT character, message, reason FROM unanswered_questions WHERE character = ?", "aria")
	if err := row.Scan(&character, &message, &reason); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if message != rec.Message || reason != rec.Reason {
		t.Errorf("stored row mismatch: got %q %q", message, reason)
	}
}

func TestSQLiteRecorder_RequiresDSN(t *testing.T) {
	if _, err := NewSQLiteRecorder(); err == nil {
		t.Fatal("expected error without DSN")
	}
}

func TestNew_SQLiteBackendFromDSN(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "unanswered.db")
	r, err := New(WithDSN(dsn))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sqlite, ok := r.(*SQLiteRecorder)
	if !ok {
		t.Fatalf("expected *SQLiteRecorder, got %T", r)
	}
	sqlite.Close()
}
