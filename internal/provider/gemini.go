package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultSecondaryModel is tried after the configured model.
const DefaultSecondaryModel = "gemini-1.5-flash"

// safeFallbackModels are tried after the default model, in order.
var safeFallbackModels = []string{"gemini-1.5-flash-8b", "gemini-1.5-pro", "gemini-pro"}

// preferredRecoveryModels orders the intersection taken during list-models
// recovery.
var preferredRecoveryModels = []string{DefaultSecondaryModel, "gemini-1.5-pro", "gemini-pro"}

// generateContentMethod marks models capable of text generation in the
// provider's model listing.
const generateContentMethod = "generateContent"

// ErrNoCandidatesReturned indicates the generate-content response carried no
// usable candidate text.
var ErrNoCandidatesReturned = errors.New("no candidates returned")

// generateService abstracts the Gemini API for testing.
type generateService interface {
	Generate(ctx context.Context, model, system, user string, history []models.ConversationTurn, temperature float64) (string, error)
	ListGenerativeModels(ctx context.Context) ([]string, error)
}

// geminiAPI adapts the generative-ai-go client to generateService.
type geminiAPI struct {
	client *genai.Client
}

func (g geminiAPI) Generate(ctx context.Context, model, system, user string, history []models.ConversationTurn, temperature float64) (string, error) {
	m := g.client.GenerativeModel(model)
	m.SetTemperature(float32(temperature))
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	chat := m.StartChat()
	for _, turn := range history {
		role := "user"
		if turn.Role == models.RoleAssistant {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(user))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoCandidatesReturned
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return strings.TrimSpace(string(txt)), nil
		}
	}
	return "", ErrNoCandidatesReturned
}

func (g geminiAPI) ListGenerativeModels(ctx context.Context) ([]string, error) {
	var names []string
	iter := g.client.ListModels(ctx)
	for {
		info, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if slices.Contains(info.SupportedGenerationMethods, generateContentMethod) {
			names = append(names, strings.TrimPrefix(info.Name, "models/"))
		}
	}
	return names, nil
}

// Secondary wraps the Gemini generate-content service. It iterates an
// ordered, de-duplicated model candidate list with a final model-discovery
// recovery step.
type Secondary struct {
	api         generateService
	model       string
	temperature float64
}

// NewSecondary creates the secondary provider client.
func NewSecondary(opts ...Option) (*Secondary, error) {
	cfg := applyOptions(opts)
	key := cfg.GeminiKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		slog.Warn("provider.NewSecondary: no Gemini API key configured, secondary calls will fail")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Secondary{api: geminiAPI{client: client}, model: cfg.GeminiModel, temperature: cfg.Temperature}, nil
}

// modelCandidates returns the ordered, de-duplicated candidate list:
// configured model, default model, then the safe fallbacks.
func (s *Secondary) modelCandidates() []string {
	raw := append([]string{s.model, DefaultSecondaryModel}, safeFallbackModels...)
	var out []string
	for _, m := range raw {
		if m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// Generate tries each candidate model in order. A model-not-found failure
// advances to the next candidate; any other failure aborts the list. When
// every candidate is not-found, one recovery pass queries the provider's live
// model list and retries once; if that also fails, the original error is
// surfaced.
func (s *Secondary) Generate(ctx context.Context, system, user string, history []models.ConversationTurn) (string, error) {
	var lastErr error
	for _, model := range s.modelCandidates() {
		text, err := s.api.Generate(ctx, model, system, user, history, s.temperature)
		if err == nil {
			slog.Debug("provider.Secondary: generation succeeded", "model", model)
			return text, nil
		}
		if Classify(err) != FailureModelNotFound {
			return "", err
		}
		slog.Warn("provider.Secondary: model not found, advancing to next candidate", "model", model, "error", err)
		lastErr = err
	}

	model, ok := s.discoverModel(ctx)
	if !ok {
		return "", lastErr
	}
	slog.Info("provider.Secondary: retrying with discovered model", "model", model)
	text, err := s.api.Generate(ctx, model, system, user, history, s.temperature)
	if err != nil {
		slog.Warn("provider.Secondary: discovered-model retry failed", "model", model, "error", err)
		return "", lastErr
	}
	return text, nil
}

// discoverModel queries the provider for its generation-capable models and
// picks the first preference-ordered match, or the first available model when
// none of the preferred ones are present.
func (s *Secondary) discoverModel(ctx context.Context) (string, bool) {
	available, err := s.api.ListGenerativeModels(ctx)
	if err != nil {
		slog.Warn("provider.Secondary: model discovery failed", "error", err)
		return "", false
	}
	if len(available) == 0 {
		return "", false
	}
	for _, preferred := range preferredRecoveryModels {
		if slices.Contains(available, preferred) {
			return preferred, true
		}
	}
	return available[0], true
}
