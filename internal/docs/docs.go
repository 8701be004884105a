// Package docs provides read-only access to the on-disk document bundle used
// by CharacterChat: prompt templates, refusal candidates, the global safety
// configuration, and per-character knowledge documents.
//
// Fixed global documents (templates, safety config, refusal candidates) are
// loaded once at store construction. Character documents are read per request
// because the character set can change while the service is running.
package docs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

// Default directory layout under the store root.
const (
	// DefaultRootDir is the default data directory.
	DefaultRootDir = "data"
	// PromptsDir holds the prompt template documents.
	PromptsDir = "prompts"
	// CharactersDir holds one subdirectory per character slug.
	CharactersDir = "characters"
	// SafetyFileName is the global safety configuration document.
	SafetyFileName = "safety.json"
)

// Template file names under PromptsDir.
const (
	SystemTemplateFile    = "system_prompt.txt"
	CharacterTemplateFile = "character_prompt.txt"
	AnswerTemplateFile    = "answer_prompt.txt"
	RefusalsFile          = "refusals.txt"
)

// Templates holds the three prompt template documents.
type Templates struct {
	System    string
	Character string
	Answer    string
}

// Opts holds configuration options for the document store.
type Opts struct {
	RootDir string // data directory containing prompts/, characters/, safety.json
}

// Option defines a configuration option for the document store.
type Option func(*Opts)

// WithRootDir sets the data directory.
func WithRootDir(dir string) Option {
	return func(o *Opts) {
		o.RootDir = dir
	}
}

// Store is a read-only document store with an explicit load phase for the
// fixed global documents.
type Store struct {
	root      string
	templates Templates
	safety    models.SafetyConfig
	refusals  []string
}

// NewStore creates a document store rooted at the configured data directory
// and eagerly loads templates, refusal candidates, and the safety config.
// Missing templates or refusal candidates are a startup error; a missing
// safety config degrades to an empty (permissive) config with a warning.
func NewStore(opts ...Option) (*Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	root := cfg.RootDir
	if root == "" {
		root = DefaultRootDir
	}
	slog.Debug("docs.NewStore: loading document bundle", "root", root)

	s := &Store{root: root}

	var err error
	if s.templates.System, err = s.readTemplate(SystemTemplateFile); err != nil {
		return nil, err
	}
	if s.templates.Character, err = s.readTemplate(CharacterTemplateFile); err != nil {
		return nil, err
	}
	if s.templates.Answer, err = s.readTemplate(AnswerTemplateFile); err != nil {
		return nil, err
	}

	refusalsPath := filepath.Join(root, PromptsDir, RefusalsFile)
	data, err := os.ReadFile(refusalsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read refusal candidates: %w", err)
	}
	s.refusals = parseRefusalCandidates(string(data))
	if len(s.refusals) == 0 {
		return nil, fmt.Errorf("no refusal candidates found in %s", refusalsPath)
	}

	safetyPath := filepath.Join(root, SafetyFileName)
	safetyData, err := os.ReadFile(safetyPath)
	if err != nil {
		slog.Warn("docs.NewStore: safety config not readable, using empty config", "path", safetyPath, "error", err)
	} else if err := json.Unmarshal(safetyData, &s.safety); err != nil {
		slog.Warn("docs.NewStore: safety config malformed, using empty config", "path", safetyPath, "error", err)
		s.safety = models.SafetyConfig{}
	}

	slog.Info("docs.NewStore: document bundle loaded",
		"root", root,
		"refusalCandidates", len(s.refusals),
		"forbiddenTopics", len(s.safety.ForbiddenTopics))
	return s, nil
}

func (s *Store) readTemplate(name string) (string, error) {
	path := filepath.Join(s.root, PromptsDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(data), nil
}

// parseRefusalCandidates splits a line-delimited document into candidate
// strings, skipping blank lines and '#' comments.
func parseRefusalCandidates(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Templates returns the loaded prompt templates.
func (s *Store) Templates() Templates {
	return s.templates
}

// SafetyConfig returns the loaded global safety configuration.
func (s *Store) SafetyConfig() models.SafetyConfig {
	return s.safety
}

// RefusalCandidates returns the loaded refusal candidate strings.
func (s *Store) RefusalCandidates() []string {
	return s.refusals
}

// CharacterDocument reads one of a character's knowledge documents (for
// example "identity.json"). The slug is matched case-insensitively. The
// second return value is false when the document does not exist or cannot be
// read; callers degrade to an empty structure in that case.
func (s *Store) CharacterDocument(slug, name string) ([]byte, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		slog.Warn("docs.CharacterDocument: rejected character slug", "slug", slug)
		return nil, false
	}
	path := filepath.Join(s.root, CharactersDir, slug, name)
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("docs.CharacterDocument: document not readable", "slug", slug, "name", name, "error", err)
		return nil, false
	}
	return data, true
}
