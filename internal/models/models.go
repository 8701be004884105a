// Package models defines the core data structures for CharacterChat.
//
// It includes request/response types for the chat API, the per-character
// knowledge profile, the safety configuration, and the unanswered-question
// record shared across modules.
package models

import (
	"errors"
	"strings"
)

// Conversation roles accepted in request history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for a chat message
	MaxMessageLength = 4096
	// MaxHistoryTurns defines the maximum number of conversation turns accepted per request
	MaxHistoryTurns = 100
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrEmptyCharacter   = errors.New("character cannot be empty")
	ErrMessageTooLong   = errors.New("message exceeds maximum length")
	ErrTooManyTurns     = errors.New("conversation history exceeds maximum length")
	ErrInvalidTurnRole  = errors.New("conversation turn role must be user or assistant")
	ErrEmptyTurnContent = errors.New("conversation turn content cannot be empty")
)

// ConversationTurn is a single prior exchange supplied by the caller.
// Turns are passed through to providers unchanged; role names are translated
// per provider at call time.
type ConversationTurn struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // message text
}

// ChatRequest represents the body of POST /api/chat.
type ChatRequest struct {
	Message             string             `json:"message"`
	Character           string             `json:"character"`
	ConversationHistory []ConversationTurn `json:"conversationHistory,omitempty"`
}

// Validate performs input validation on a ChatRequest.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	if strings.TrimSpace(r.Character) == "" {
		return ErrEmptyCharacter
	}
	if len(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if len(r.ConversationHistory) > MaxHistoryTurns {
		return ErrTooManyTurns
	}
	for _, turn := range r.ConversationHistory {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return ErrInvalidTurnRole
		}
		if turn.Content == "" {
			return ErrEmptyTurnContent
		}
	}
	return nil
}

// ChatResponse is the success body returned by POST /api/chat.
type ChatResponse struct {
	Answer       string `json:"answer"`
	ShouldRefuse bool   `json:"shouldRefuse"`
}

// ErrorResponse is the body returned for 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error creates an error response body with the given message.
func Error(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// PromptBundle holds the rendered prompts for a single request. ShouldRefuse
// is true iff the composed context string was empty after trimming; it is the
// sole gate that bypasses provider invocation.
type PromptBundle struct {
	System       string
	User         string
	ShouldRefuse bool
}

// SafetyConfig holds the global, character-independent safety rules.
type SafetyConfig struct {
	ForbiddenTopics  []string `json:"forbidden_topics"`
	ChildSafeRules   string   `json:"child_safe_rules"`
	EscalationPolicy string   `json:"escalation_policy"`
}
