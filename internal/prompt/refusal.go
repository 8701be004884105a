package prompt

import "math/rand/v2"

// Picker selects one refusal candidate uniformly at random per request, so
// each refusal event may surface different wording.
type Picker struct {
	candidates []string
	intn       func(n int) int
}

// NewPicker creates a picker over the given candidates using the shared
// math/rand/v2 source.
func NewPicker(candidates []string) *Picker {
	return &Picker{candidates: candidates, intn: rand.IntN}
}

// NewPickerWithRand creates a picker with an injected random source so tests
// can pin outcomes deterministically.
func NewPickerWithRand(candidates []string, r *rand.Rand) *Picker {
	return &Picker{candidates: candidates, intn: r.IntN}
}

// Pick returns one candidate, or the empty string when no candidates are
// configured.
func (p *Picker) Pick() string {
	if len(p.candidates) == 0 {
		return ""
	}
	return p.candidates[p.intn(len(p.candidates))]
}
