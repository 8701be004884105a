package provider

import "time"

// Default generation settings.
const (
	// DefaultTemperature is the generation temperature used by both providers.
	DefaultTemperature = 0.7
	// DefaultTimeout bounds each provider call.
	DefaultTimeout = 60 * time.Second
)

// Opts holds configuration options shared by the provider clients and the
// gateway.
type Opts struct {
	OpenAIKey   string  // primary provider API key
	OpenAIModel string  // primary model name
	GeminiKey   string  // secondary provider API key
	GeminiModel string  // configured secondary model, tried first
	Temperature float64 // generation temperature, 0 means DefaultTemperature
	Timeout     time.Duration
}

// Option defines a configuration option for provider construction.
type Option func(*Opts)

// WithOpenAIKey sets the primary provider API key.
func WithOpenAIKey(key string) Option {
	return func(o *Opts) { o.OpenAIKey = key }
}

// WithOpenAIModel sets the primary model name.
func WithOpenAIModel(model string) Option {
	return func(o *Opts) { o.OpenAIModel = model }
}

// WithGeminiKey sets the secondary provider API key.
func WithGeminiKey(key string) Option {
	return func(o *Opts) { o.GeminiKey = key }
}

// WithGeminiModel sets the secondary model tried before the built-in
// candidates.
func WithGeminiModel(model string) Option {
	return func(o *Opts) { o.GeminiModel = model }
}

// WithTemperature sets the generation temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

func applyOptions(opts []Option) Opts {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}
