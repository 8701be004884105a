package unanswered

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

func TestFileRecorder_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "unanswered.jsonl")
	r := NewFileRecorder(WithPath(path))

	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	records := []models.UnansweredRecord{
		{Timestamp: ts, Character: "aria", Message: "What is courage?", Reason: models.ReasonEmptyContext},
		{Timestamp: ts, Character: "aria", Message: "Tell me a secret", Reason: models.ReasonModelRefusal},
	}
	for _, rec := range records {
		if err := r.Record(context.Background(), rec); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	defer f.Close()

	var got []models.UnansweredRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec models.UnansweredRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].Reason != models.ReasonEmptyContext || got[1].Reason != models.ReasonModelRefusal {
		t.Errorf("unexpected records %+v", got)
	}
	if !got[0].Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, got[0].Timestamp)
	}
}

func TestFileRecorder_DefaultPath(t *testing.T) {
	r := NewFileRecorder()
	if r.path != DefaultFilePath {
		t.Errorf("expected default path %q, got %q", DefaultFilePath, r.path)
	}
}

func TestFileRecorder_OpenFailure(t *testing.T) {
	// A directory at the log path makes the open fail.
	dir := t.TempDir()
	r := NewFileRecorder(WithPath(dir))
	if err := r.Record(context.Background(), models.UnansweredRecord{Character: "aria"}); err == nil {
		t.Fatal("expected error when log path is a directory")
	}
}
