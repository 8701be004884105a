package models

import "time"

// Refusal and failure reason tags recorded with unanswered questions.
const (
	// ReasonEmptyContext indicates no knowledge was found for the character.
	ReasonEmptyContext = "empty_context"
	// ReasonModelRefusal indicates the provider's own output matched the sampled refusal text.
	ReasonModelRefusal = "model_refusal"
	// ReasonSafetyRefusal indicates the safety filter substituted the answer.
	ReasonSafetyRefusal = "safety_refusal"
)

// ReasonOpenAIError tags a fatal primary-provider failure.
func ReasonOpenAIError(msg string) string {
	return "openai_error:" + msg
}

// ReasonGeminiError tags exhaustion of both providers.
func ReasonGeminiError(msg string) string {
	return "gemini_error:" + msg
}

// UnansweredRecord is one append-only log entry for a refusal or failure
// event. Writes are fire-and-forget; a failing sink never affects the
// response returned to the caller.
type UnansweredRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Character string    `json:"character"`
	Message   string    `json:"message"`
	Reason    string    `json:"reason"`
}
