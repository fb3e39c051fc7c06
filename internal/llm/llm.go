package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Client sends one prompt to a chat-completion backend and returns the raw
// text of the first choice. Implementations never retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request captures a single completion call. Nil sampling fields leave the
// provider default in place; a pointer to 0 is sent as 0.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Language    string
	Temperature *float64
	TopP        *float64
	MaxTokens   int
	JSONMode    bool

	// ThinkingBudget caps reasoning tokens on models that spend part of
	// MaxTokens thinking. Providers without such a budget ignore it.
	ThinkingBudget *int
}

// Float returns a pointer to v for the optional sampling fields of Request.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Provider identifiers accepted by configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrNoCredential is returned when no API credential is configured.
var ErrNoCredential = errors.New("llm credential not configured")

// TransportError wraps any failure to obtain completion text from the backend:
// connection errors, timeouts, non-2xx statuses and unusable bodies.
type TransportError struct {
	Provider string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Unconfigured is the client used when no credential is present.
type Unconfigured struct{}

// Complete returns ErrNoCredential without any network activity.
func (Unconfigured) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNoCredential
}

func languageDirective(language string) string {
	return fmt.Sprintf("All content must be written in the %q language. JSON keys stay in English.", language)
}

// WithLanguageDirective appends the output-language instruction to a system
// message unless it is already present.
func WithLanguageDirective(system, language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return system
	}
	directive := languageDirective(language)
	if strings.Contains(system, directive) {
		return system
	}
	if strings.TrimSpace(system) == "" {
		return directive
	}
	return strings.TrimRight(system, "\n") + "\n" + directive
}
