package safety

import (
	"strings"
	"testing"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

const refusal = "I'd rather not go there."

var cfg = models.SafetyConfig{
	ForbiddenTopics: []string{"gambling", "Violence"},
}

func TestEnforce_ForbiddenTopicSubstitutes(t *testing.T) {
	f := NewFilter()
	answer, rule := f.Enforce("Let me tell you about GAMBLING odds.", cfg, nil, refusal)
	if answer != refusal {
		t.Errorf("expected refusal substitution, got %q", answer)
	}
	if rule != RuleForbiddenTopic {
		t.Errorf("expected rule %q, got %q", RuleForbiddenTopic, rule)
	}
}

func TestEnforce_PersonalInfoSubstitutes(t *testing.T) {
	f := NewFilter()
	for _, answer := range []string{
		"What is your home address?",
		"Could you share your PHONE number?",
		"Send me your email and full name.",
	} {
		got, rule := f.Enforce(answer, cfg, nil, refusal)
		if got != refusal {
			t.Errorf("expected refusal for %q, got %q", answer, got)
		}
		if rule != RulePersonalInfo {
			t.Errorf("expected rule %q for %q, got %q", RulePersonalInfo, answer, rule)
		}
	}
}

func TestEnforce_CleanAnswerPassesThrough(t *testing.T) {
	f := NewFilter()
	answer, rule := f.Enforce("Good morning! The tide is calm today.", cfg, nil, refusal)
	if answer != "Good morning! The tide is calm today." {
		t.Errorf("clean answer modified: %q", answer)
	}
	if rule != "" {
		t.Errorf("expected no rule violation, got %q", rule)
	}
}

func TestEnforce_Idempotent(t *testing.T) {
	f := NewFilter()
	inputs := []string{
		"a bet on gambling",
		"what's your address",
		"a perfectly safe answer",
		refusal,
	}
	for _, in := range inputs {
		once, _ := f.Enforce(in, cfg, nil, refusal)
		twice, _ := f.Enforce(once, cfg, nil, refusal)
		if once != twice {
			t.Errorf("enforce not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestEnforce_NeverReturnsForbiddenTopic(t *testing.T) {
	f := NewFilter()
	inputs := []string{
		"pure violence here",
		"gambling and violence",
		"harmless",
	}
	for _, in := range inputs {
		out, _ := f.Enforce(in, cfg, nil, refusal)
		for _, topic := range cfg.ForbiddenTopics {
			if strings.Contains(strings.ToLower(out), strings.ToLower(topic)) {
				t.Errorf("filtered answer %q still contains forbidden topic %q", out, topic)
			}
		}
	}
}

func TestEnforce_ForbiddenTopicCheckedBeforePersonalInfo(t *testing.T) {
	f := NewFilter()
	_, rule := f.Enforce("gambling at this address", cfg, nil, refusal)
	if rule != RuleForbiddenTopic {
		t.Errorf("expected forbidden-topic rule to fire first, got %q", rule)
	}
}

// flagAllRule violates everything; used to verify rule pluggability.
type flagAllRule struct{}

func (flagAllRule) Name() string { return "flag_all" }
func (flagAllRule) Violates(string, models.SafetyConfig, models.Guardrails) bool {
	return true
}

func TestEnforce_CustomRule(t *testing.T) {
	f := NewFilterWithRules(flagAllRule{})
	answer, rule := f.Enforce("anything", cfg, nil, refusal)
	if answer != refusal || rule != "flag_all" {
		t.Errorf("custom rule not applied: answer=%q rule=%q", answer, rule)
	}
}
