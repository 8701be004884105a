// Package safety enforces the global content-safety rules on generated
// answers before they are returned to the caller.
package safety

import (
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

// Rule names reported by the built-in rules.
const (
	RuleForbiddenTopic = "forbidden_topic"
	RulePersonalInfo   = "personal_info"
)

// Rule is one safety check evaluated against a candidate answer. Rules are
// pluggable so a stricter classifier can replace the keyword heuristics
// without touching the pipeline.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string
	// Violates reports whether the answer breaks this rule.
	Violates(answer string, cfg models.SafetyConfig, guardrails models.Guardrails) bool
}

// ForbiddenTopicRule flags answers containing any forbidden-topic substring,
// matched case-insensitively.
type ForbiddenTopicRule struct{}

func (ForbiddenTopicRule) Name() string { return RuleForbiddenTopic }

func (ForbiddenTopicRule) Violates(answer string, cfg models.SafetyConfig, _ models.Guardrails) bool {
	lower := strings.ToLower(answer)
	for _, topic := range cfg.ForbiddenTopics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic != "" && strings.Contains(lower, topic) {
			return true
		}
	}
	return false
}

// personalInfoKeywords are the request patterns treated as attempts to elicit
// personal information. A keyword heuristic, not a classifier.
var personalInfoKeywords = []string{
	"address",
	"phone",
	"email",
	"last name",
	"full name",
}

// PersonalInfoRule flags answers containing a personal-information-request
// pattern.
type PersonalInfoRule struct{}

func (PersonalInfoRule) Name() string { return RulePersonalInfo }

func (PersonalInfoRule) Violates(answer string, _ models.SafetyConfig, _ models.Guardrails) bool {
	lower := strings.ToLower(answer)
	for _, keyword := range personalInfoKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Filter applies safety rules in order. Guardrail tone and virtue constraints
// are enforced during prompt construction, not here.
type Filter struct {
	rules []Rule
}

// NewFilter creates a filter with the default rules: forbidden topics first,
// then the personal-information heuristic.
func NewFilter() *Filter {
	return NewFilterWithRules(ForbiddenTopicRule{}, PersonalInfoRule{})
}

// NewFilterWithRules creates a filter with a custom rule set.
func NewFilterWithRules(rules ...Rule) *Filter {
	return &Filter{rules: rules}
}

// Enforce checks the answer against each rule in order and substitutes the
// refusal text on the first violation. It returns the final answer and the
// name of the violated rule, or an empty name when the answer passed
// unchanged.
func (f *Filter) Enforce(answer string, cfg models.SafetyConfig, guardrails models.Guardrails, refusalText string) (string, string) {
	for _, rule := range f.rules {
		if rule.Violates(answer, cfg, guardrails) {
			return refusalText, rule.Name()
		}
	}
	return answer, ""
}
