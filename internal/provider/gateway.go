package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/StoryMesh/CharacterChat/internal/models"
)

// textGenerator is the role either provider plays inside the gateway.
type textGenerator interface {
	Generate(ctx context.Context, system, user string, history []models.ConversationTurn) (string, error)
}

// FatalPrimaryError wraps a non-quota primary failure; no secondary attempt
// was made.
type FatalPrimaryError struct {
	Err error
}

func (e *FatalPrimaryError) Error() string { return e.Err.Error() }
func (e *FatalPrimaryError) Unwrap() error { return e.Err }

// ExhaustedError reports that both providers failed. Its message carries both
// underlying failures so the cause is diagnosable.
type ExhaustedError struct {
	PrimaryErr   error
	SecondaryErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("primary: %v; secondary: %v", e.PrimaryErr, e.SecondaryErr)
}

// Gateway invokes the primary provider and falls back to the secondary when
// the primary failure is quota-class. Each call is bounded by the configured
// timeout.
type Gateway struct {
	primary   textGenerator
	secondary textGenerator
	timeout   time.Duration
}

// NewGateway creates a gateway over the two provider roles.
func NewGateway(primary, secondary textGenerator, opts ...Option) *Gateway {
	cfg := applyOptions(opts)
	return &Gateway{primary: primary, secondary: secondary, timeout: cfg.Timeout}
}

// Generate produces the answer text for a prompt bundle. The returned text is
// trimmed and may be empty.
func (g *Gateway) Generate(ctx context.Context, bundle models.PromptBundle, history []models.ConversationTurn) (string, error) {
	pctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, primaryErr := g.primary.Generate(pctx, bundle.System, bundle.User, history)
	if primaryErr == nil {
		return strings.TrimSpace(text), nil
	}

	if Classify(primaryErr) != FailureQuota {
		slog.Error("provider.Gateway: fatal primary failure", "error", primaryErr)
		return "", &FatalPrimaryError{Err: primaryErr}
	}
	slog.Warn("provider.Gateway: quota-class primary failure, falling back to secondary", "error", primaryErr)

	sctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, secondaryErr := g.secondary.Generate(sctx, bundle.System, bundle.User, history)
	if secondaryErr != nil {
		slog.Error("provider.Gateway: both providers failed", "primaryError", primaryErr, "secondaryError", secondaryErr)
		return "", &ExhaustedError{PrimaryErr: primaryErr, SecondaryErr: secondaryErr}
	}
	return strings.TrimSpace(text), nil
}
