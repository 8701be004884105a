package provider

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/StoryMesh/CharacterChat/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultPrimaryModel is the chat-completion model used when none is
// configured.
const DefaultPrimaryModel = openai.ChatModelGPT4oMini

// ErrNoChoicesReturned indicates the completion response carried no choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChat adapts the OpenAI client to chatService.
type openaiChat struct {
	client openai.Client
}

func (a openaiChat) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Primary wraps the OpenAI chat-completion service.
type Primary struct {
	chat        chatService
	model       string
	temperature float64
}

// NewPrimary creates the primary provider client. A missing API key is not a
// construction error: the resulting authentication failure at call time is a
// quota-class failure that triggers secondary fallback.
func NewPrimary(opts ...Option) *Primary {
	cfg := applyOptions(opts)
	key := cfg.OpenAIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		slog.Warn("provider.NewPrimary: no OpenAI API key configured, primary calls will fail over")
	}
	model := cfg.OpenAIModel
	if model == "" {
		model = DefaultPrimaryModel
	}
	client := openai.NewClient(option.WithAPIKey(key))
	return &Primary{chat: openaiChat{client: client}, model: model, temperature: cfg.Temperature}
}

// Generate runs one chat completion: system prompt, translated history, then
// the user prompt. Returns the trimmed generated text, possibly empty.
func (p *Primary) Generate(ctx context.Context, system, user string, history []models.ConversationTurn) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, turn := range history {
		switch turn.Role {
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(user))

	resp, err := p.chat.Create(ctx, openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		Temperature: openai.Float(p.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
