// Package flow implements the chat request pipeline: load character
// knowledge, build prompts, gate on empty context, invoke providers, and
// post-filter the answer for safety.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/StoryMesh/CharacterChat/internal/alert"
	"github.com/StoryMesh/CharacterChat/internal/knowledge"
	"github.com/StoryMesh/CharacterChat/internal/models"
	"github.com/StoryMesh/CharacterChat/internal/prompt"
	"github.com/StoryMesh/CharacterChat/internal/provider"
	"github.com/StoryMesh/CharacterChat/internal/safety"
	"github.com/StoryMesh/CharacterChat/internal/unanswered"
)

// Generator produces answer text for a prompt bundle. Implemented by
// provider.Gateway.
type Generator interface {
	Generate(ctx context.Context, bundle models.PromptBundle, history []models.ConversationTurn) (string, error)
}

// Deps carries the pipeline's collaborators. Notifier and Recorder are
// optional; a nil value disables that side channel.
type Deps struct {
	Loader   *knowledge.Loader
	Builder  *prompt.Builder
	Refusals *prompt.Picker
	Gateway  Generator
	Filter   *safety.Filter
	Safety   models.SafetyConfig
	Recorder unanswered.Recorder
	Notifier alert.Notifier
}

// ChatFlow orchestrates one chat request end to end. It holds no per-request
// state; concurrent requests share it safely.
type ChatFlow struct {
	deps Deps
}

// New creates the chat pipeline from its collaborators.
func New(deps Deps) *ChatFlow {
	return &ChatFlow{deps: deps}
}

// Answer produces the final answer for a question asked of a character.
// The safety filter runs on every path, including the empty-context refusal
// shortcut, so its contract never weakens.
func (f *ChatFlow) Answer(ctx context.Context, character, message string, history []models.ConversationTurn) (models.ChatResponse, error) {
	profile := f.deps.Loader.Load(character)
	contextStr := knowledge.BuildContext(profile)
	refusal := f.deps.Refusals.Pick()

	bundle := f.deps.Builder.Build(prompt.BuildInput{
		Question:      message,
		Context:       contextStr,
		CharacterName: profile.DisplayName(),
		Guardrails:    profile.Guardrails,
		RefusalText:   refusal,
	})

	if bundle.ShouldRefuse {
		slog.Info("flow.Answer: empty context, refusing without provider call", "character", profile.Slug)
		f.record(ctx, profile.Slug, message, models.ReasonEmptyContext)
		answer, _ := f.deps.Filter.Enforce(refusal, f.deps.Safety, profile.Guardrails, refusal)
		return models.ChatResponse{Answer: answer, ShouldRefuse: true}, nil
	}

	text, err := f.deps.Gateway.Generate(ctx, bundle, history)
	if err != nil {
		reason := models.ReasonGeminiError(err.Error())
		var fatal *provider.FatalPrimaryError
		if errors.As(err, &fatal) {
			reason = models.ReasonOpenAIError(err.Error())
		}
		f.record(ctx, profile.Slug, message, reason)
		return models.ChatResponse{}, err
	}

	if normalizeText(text) == normalizeText(refusal) {
		slog.Info("flow.Answer: provider output matched refusal text", "character", profile.Slug)
		f.record(ctx, profile.Slug, message, models.ReasonModelRefusal)
	}

	answer, rule := f.deps.Filter.Enforce(text, f.deps.Safety, profile.Guardrails, refusal)
	if rule != "" {
		slog.Info("flow.Answer: safety filter substituted answer", "character", profile.Slug, "rule", rule)
		f.record(ctx, profile.Slug, message, models.ReasonSafetyRefusal)
		f.notify(ctx, profile.Slug, rule)
	}

	return models.ChatResponse{Answer: answer, ShouldRefuse: bundle.ShouldRefuse}, nil
}

// record appends an unanswered-question entry. Recorder failures are logged
// and swallowed; they never affect the response.
func (f *ChatFlow) record(ctx context.Context, character, message, reason string) {
	if f.deps.Recorder == nil {
		return
	}
	rec := models.UnansweredRecord{
		Timestamp: time.Now().UTC(),
		Character: character,
		Message:   message,
		Reason:    reason,
	}
	if err := f.deps.Recorder.Record(ctx, rec); err != nil {
		slog.Warn("flow.record: failed to record unanswered question", "character", character, "reason", reason, "error", err)
	}
}

// notify fires the escalation notifier, if configured. Failures are logged
// and swallowed.
func (f *ChatFlow) notify(ctx context.Context, character, rule string) {
	if f.deps.Notifier == nil {
		return
	}
	if err := f.deps.Notifier.NotifySafetyRefusal(ctx, character, rule); err != nil {
		slog.Warn("flow.notify: failed to send escalation alert", "character", character, "error", err)
	}
}

// normalizeText collapses runs of whitespace and trims, for comparing
// provider output against the sampled refusal text.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
