package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/StoryMesh/CharacterChat/internal/alert"
	"github.com/StoryMesh/CharacterChat/internal/api"
	"github.com/StoryMesh/CharacterChat/internal/docs"
	"github.com/StoryMesh/CharacterChat/internal/flow"
	"github.com/StoryMesh/CharacterChat/internal/knowledge"
	"github.com/StoryMesh/CharacterChat/internal/lockfile"
	"github.com/StoryMesh/CharacterChat/internal/prompt"
	"github.com/StoryMesh/CharacterChat/internal/provider"
	"github.com/StoryMesh/CharacterChat/internal/safety"
	"github.com/StoryMesh/CharacterChat/internal/unanswered"
	"github.com/StoryMesh/CharacterChat/internal/util"
	"github.com/joho/godotenv"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	lock, err := lockfile.Acquire(*flags.dataDir)
	if err != nil {
		slog.Error("Failed to acquire instance lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	store, err := docs.NewStore(docs.WithRootDir(*flags.dataDir))
	if err != nil {
		slog.Error("Failed to load document bundle", "error", err)
		os.Exit(1)
	}

	providerOpts := buildProviderOptions(flags, config)
	secondary, err := provider.NewSecondary(providerOpts...)
	if err != nil {
		slog.Error("Failed to create secondary provider", "error", err)
		os.Exit(1)
	}
	primary := provider.NewPrimary(providerOpts...)
	gateway := provider.NewGateway(primary, secondary, providerOpts...)

	recorder, err := unanswered.New(buildRecorderOptions(flags)...)
	if err != nil {
		slog.Error("Failed to create unanswered-question recorder", "error", err)
		os.Exit(1)
	}

	var notifier alert.Notifier
	if util.ParseBoolEnv("SAFETY_ALERTS_ENABLED", false) {
		n, err := alert.NewTwilioNotifier()
		if err != nil {
			slog.Warn("Safety alerts enabled but notifier unavailable, continuing without", "error", err)
		} else {
			notifier = n
		}
	}

	chat := flow.New(flow.Deps{
		Loader:   knowledge.NewLoader(store),
		Builder:  prompt.NewBuilder(store.Templates()),
		Refusals: prompt.NewPicker(store.RefusalCandidates()),
		Gateway:  gateway,
		Filter:   safety.NewFilter(),
		Safety:   store.SafetyConfig(),
		Recorder: recorder,
		Notifier: notifier,
	})

	slog.Info("Bootstrapping CharacterChat", "dataDir", *flags.dataDir, "apiAddr", *flags.apiAddr)
	if err := api.Run(chat, api.WithAddr(*flags.apiAddr)); err != nil {
		slog.Error("CharacterChat failed to run", "error", err)
		os.Exit(1)
	}
}

// Config holds environment configuration
type Config struct {
	DataDir         string
	OpenAIKey       string
	OpenAIModel     string
	GeminiKey       string
	GeminiModel     string
	UnansweredPath  string
	UnansweredDSN   string
	APIAddr         string
	ProviderTimeout time.Duration
}

// Flags holds command line flag values
type Flags struct {
	dataDir        *string
	openaiModel    *string
	geminiModel    *string
	unansweredPath *string
	unansweredDSN  *string
	apiAddr        *string
}

// initializeLogger sets up structured logging; debug level when CHARCHAT_DEBUG is set.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("CHARCHAT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	return Config{
		DataDir:         util.GetenvDefault("CHARCHAT_DATA_DIR", docs.DefaultRootDir),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     os.Getenv("OPENAI_MODEL"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		UnansweredPath:  util.GetenvDefault("UNANSWERED_LOG_PATH", unanswered.DefaultFilePath),
		UnansweredDSN:   os.Getenv("UNANSWERED_DB_DSN"),
		APIAddr:         util.GetenvDefault("CHARCHAT_API_ADDR", api.DefaultAddr),
		ProviderTimeout: util.ParseDurationEnv("CHARCHAT_PROVIDER_TIMEOUT", provider.DefaultTimeout),
	}
}

// parseCommandLineFlags parses flags with environment values as defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		dataDir:        flag.String("data-dir", config.DataDir, "directory holding prompts, characters, and safety config"),
		openaiModel:    flag.String("openai-model", config.OpenAIModel, "primary provider model name"),
		geminiModel:    flag.String("gemini-model", config.GeminiModel, "secondary provider model name"),
		unansweredPath: flag.String("unanswered-log", config.UnansweredPath, "path of the unanswered-question JSONL log"),
		unansweredDSN:  flag.String("unanswered-dsn", config.UnansweredDSN, "database DSN for the unanswered-question recorder (overrides the JSONL log)"),
		apiAddr:        flag.String("addr", config.APIAddr, "API listen address"),
	}
	flag.Parse()
	return flags
}

func buildProviderOptions(flags Flags, config Config) []provider.Option {
	var opts []provider.Option
	if config.OpenAIKey != "" {
		opts = append(opts, provider.WithOpenAIKey(config.OpenAIKey))
	}
	if *flags.openaiModel != "" {
		opts = append(opts, provider.WithOpenAIModel(*flags.openaiModel))
	}
	if config.GeminiKey != "" {
		opts = append(opts, provider.WithGeminiKey(config.GeminiKey))
	}
	if *flags.geminiModel != "" {
		opts = append(opts, provider.WithGeminiModel(*flags.geminiModel))
	}
	opts = append(opts, provider.WithTimeout(config.ProviderTimeout))
	return opts
}

func buildRecorderOptions(flags Flags) []unanswered.Option {
	var opts []unanswered.Option
	if *flags.unansweredDSN != "" {
		opts = append(opts, unanswered.WithDSN(*flags.unansweredDSN))
	}
	if *flags.unansweredPath != "" {
		opts = append(opts, unanswered.WithPath(*flags.unansweredPath))
	}
	return opts
}
