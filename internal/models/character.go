package models

// Guardrails holds free-form structured per-character constraints (tone,
// redirection style, etc.). They are consumed by prompt template rendering via
// dotted-path tokens; the safety filter does not enforce them.
type Guardrails map[string]any

// Virtue is a named character trait with an optional description.
type Virtue struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CharacterIdentity mirrors the identity.json document of a character's
// knowledge directory. Background entries may be plain strings or objects with
// a "fact" field; both forms are accepted.
type CharacterIdentity struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name,omitempty"`
	Background    []any    `json:"background,omitempty"`
	Virtues       []Virtue `json:"virtues,omitempty"`
	Teaching      []string `json:"teaching,omitempty"`
	CoachLines    []string `json:"coach_lines,omitempty"`
	Quotes        []string `json:"quotes,omitempty"`
	DailyMissions []string `json:"daily_missions,omitempty"`
}

// CharacterProfile is the fully loaded knowledge bundle for one character.
// It is loaded fresh per request and immutable after load.
type CharacterProfile struct {
	Slug        string
	Identity    CharacterIdentity
	RawIdentity map[string]any // identity.json as parsed, for raw context dumps
	Style       map[string]any // style.json as parsed
	Guardrails  Guardrails     // guardrails.json as parsed
}

// DisplayName returns the character's name from the identity document,
// falling back to the slug when the document does not provide one.
func (p *CharacterProfile) DisplayName() string {
	if p.Identity.Name != "" {
		return p.Identity.Name
	}
	return p.Slug
}
