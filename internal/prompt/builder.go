package prompt

import (
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/docs"
	"github.com/StoryMesh/CharacterChat/internal/models"
)

// Builder renders prompt bundles from the loaded templates. It is pure and
// deterministic given identical inputs; refusal-text randomness lives in the
// Picker, not here.
type Builder struct {
	templates docs.Templates
}

// NewBuilder creates a prompt builder over the given templates.
func NewBuilder(templates docs.Templates) *Builder {
	return &Builder{templates: templates}
}

// BuildInput carries the per-request values substituted into the templates.
type BuildInput struct {
	Question      string
	Context       string
	CharacterName string
	Guardrails    models.Guardrails
	RefusalText   string
}

// Build renders the system and user prompts and computes the refusal gate.
// The system prompt is the base system template followed by the rendered
// character template, blank segments dropped, joined by a blank line.
// ShouldRefuse is true iff the context string is empty after trimming,
// independent of guardrails content.
func (b *Builder) Build(in BuildInput) models.PromptBundle {
	vars := map[string]any{
		"question":       in.Question,
		"context":        in.Context,
		"character_name": in.CharacterName,
		"refusal":        in.RefusalText,
		"guardrails":     map[string]any(in.Guardrails),
	}

	var segments []string
	for _, tpl := range []string{b.templates.System, b.templates.Character} {
		if rendered := strings.TrimSpace(Render(tpl, vars)); rendered != "" {
			segments = append(segments, rendered)
		}
	}

	return models.PromptBundle{
		System:       strings.Join(segments, "\n\n"),
		User:         strings.TrimSpace(Render(b.templates.Answer, vars)),
		ShouldRefuse: strings.TrimSpace(in.Context) == "",
	}
}
