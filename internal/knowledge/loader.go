// Package knowledge loads per-character knowledge bundles and composes the
// grounded context string that is injected into prompts.
package knowledge

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

// Character knowledge document names.
const (
	IdentityFile   = "identity.json"
	StyleFile      = "style.json"
	GuardrailsFile = "guardrails.json"
)

// Source reads a character's knowledge documents. The second return value is
// false when the document is missing or unreadable.
type Source interface {
	CharacterDocument(slug, name string) ([]byte, bool)
}

// Loader reads character knowledge bundles from a document source. It is
// side-effect-free and holds no per-request state.
type Loader struct {
	src Source
}

// NewLoader creates a knowledge loader backed by the given document source.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load reads a character's knowledge documents. Any missing or malformed
// document degrades to an empty structure; Load itself never fails.
func (l *Loader) Load(slug string) *models.CharacterProfile {
	profile := &models.CharacterProfile{Slug: strings.ToLower(strings.TrimSpace(slug))}

	if data, ok := l.src.CharacterDocument(slug, IdentityFile); ok {
		if err := json.Unmarshal(data, &profile.Identity); err != nil {
			slog.Warn("knowledge.Load: malformed identity document", "character", slug, "error", err)
		}
		if err := json.Unmarshal(data, &profile.RawIdentity); err != nil {
			profile.RawIdentity = nil
		}
	}
	if data, ok := l.src.CharacterDocument(slug, StyleFile); ok {
		if err := json.Unmarshal(data, &profile.Style); err != nil {
			slog.Warn("knowledge.Load: malformed style document", "character", slug, "error", err)
			profile.Style = nil
		}
	}
	if data, ok := l.src.CharacterDocument(slug, GuardrailsFile); ok {
		if err := json.Unmarshal(data, &profile.Guardrails); err != nil {
			slog.Warn("knowledge.Load: malformed guardrails document", "character", slug, "error", err)
			profile.Guardrails = nil
		}
	}

	return profile
}

// BuildContext composes the human-readable, section-delimited context string
// for a profile. Sections with no content are omitted entirely; a character
// with no knowledge documents yields an empty string.
func BuildContext(p *models.CharacterProfile) string {
	var sections []string

	if dump := prettyJSON(p.RawIdentity); dump != "" {
		sections = append(sections, "## Identity\n"+dump)
	}
	if dump := prettyJSON(p.Style); dump != "" {
		sections = append(sections, "## Style\n"+dump)
	}

	if facts := extractFacts(p.Identity.Background); len(facts) > 0 {
		sections = append(sections, bulletSection("Background", facts))
	}

	if len(p.Identity.Virtues) > 0 {
		var lines []string
		for _, v := range p.Identity.Virtues {
			if v.Name == "" {
				continue
			}
			if v.Description != "" {
				lines = append(lines, v.Name+": "+v.Description)
			} else {
				lines = append(lines, v.Name)
			}
		}
		if len(lines) > 0 {
			sections = append(sections, bulletSection("Virtues", lines))
		}
	}

	for _, ls := range []struct {
		title string
		items []string
	}{
		{"Teaching Guidance", p.Identity.Teaching},
		{"Coach Lines", p.Identity.CoachLines},
		{"Quotes", p.Identity.Quotes},
		{"Daily Missions", p.Identity.DailyMissions},
	} {
		if len(ls.items) > 0 {
			sections = append(sections, bulletSection(ls.title, ls.items))
		}
	}

	return strings.Join(sections, "\n\n")
}

// extractFacts flattens background entries, accepting both plain strings and
// objects carrying a "fact" field. Entries of any other shape are skipped.
func extractFacts(background []any) []string {
	var facts []string
	for _, entry := range background {
		switch v := entry.(type) {
		case string:
			if v != "" {
				facts = append(facts, v)
			}
		case map[string]any:
			if fact, ok := v["fact"].(string); ok && fact != "" {
				facts = append(facts, fact)
			}
		}
	}
	return facts
}

func bulletSection(title string, items []string) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(title)
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}

func prettyJSON(doc map[string]any) string {
	if len(doc) == 0 {
		return ""
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
