package prompt

import (
	"strings"
	"testing"

	"github.com/StoryMesh/CharacterChat/internal/docs"
	"github.com/StoryMesh/CharacterChat/internal/models"
)

func testTemplates() docs.Templates {
	return docs.Templates{
		System:    "Base rules. {{guardrails.constraints.global}}",
		Character: "You are {{character_name}}.\n\n{{context}}",
		Answer:    "Question: {{question}}",
	}
}

func TestBuild_SystemConcatenation(t *testing.T) {
	b := NewBuilder(testTemplates())
	bundle := b.Build(BuildInput{
		Question:      "hello",
		Context:       "## Identity\nkeeper",
		CharacterName: "Aria",
		Guardrails:    models.Guardrails{"constraints": map[string]any{"global": "Stay in character."}},
	})

	want := "Base rules. Stay in character.\n\nYou are Aria.\n\n## Identity\nkeeper"
	if bundle.System != want {
		t.Errorf("unexpected system prompt:\n got %q\nwant %q", bundle.System, want)
	}
	if bundle.User != "Question: hello" {
		t.Errorf("unexpected user prompt: %q", bundle.User)
	}
	if bundle.ShouldRefuse {
		t.Error("expected ShouldRefuse false with non-empty context")
	}
}

func TestBuild_BlankSegmentsDropped(t *testing.T) {
	b := NewBuilder(docs.Templates{
		System:    "{{missing}}",
		Character: "You are {{character_name}}.",
		Answer:    "{{question}}",
	})
	bundle := b.Build(BuildInput{Question: "q", Context: "ctx", CharacterName: "Aria"})
	if bundle.System != "You are Aria." {
		t.Errorf("expected blank system segment dropped, got %q", bundle.System)
	}
	if strings.Contains(bundle.System, "\n\n\n") {
		t.Errorf("unexpected extra blank lines in %q", bundle.System)
	}
}

func TestBuild_ShouldRefuseOnEmptyContext(t *testing.T) {
	b := NewBuilder(testTemplates())
	for _, ctx := range []string{"", "   ", "\n\t "} {
		bundle := b.Build(BuildInput{Question: "q", Context: ctx, CharacterName: "Aria"})
		if !bundle.ShouldRefuse {
			t.Errorf("expected ShouldRefuse true for context %q", ctx)
		}
	}
}

func TestBuild_ShouldRefuseIndependentOfGuardrails(t *testing.T) {
	b := NewBuilder(testTemplates())
	bundle := b.Build(BuildInput{
		Question:   "q",
		Context:    "",
		Guardrails: models.Guardrails{"tone": "warm"},
	})
	if !bundle.ShouldRefuse {
		t.Error("guardrails content must not affect the refusal gate")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder(testTemplates())
	in := BuildInput{Question: "q", Context: "ctx", CharacterName: "Aria"}
	first := b.Build(in)
	second := b.Build(in)
	if first != second {
		t.Error("expected identical bundles for identical inputs")
	}
}
