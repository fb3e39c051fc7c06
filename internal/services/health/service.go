package health

import (
	"context"
	"time"

	"sport-backend/internal/llm"
	"sport-backend/internal/shared/telemetry"
)

const (
	probePrompt    = "Hello"
	probeMaxTokens = 10
	defaultTimeout = 10 * time.Second

	// Reasoning models would otherwise spend the whole token budget thinking
	// and return no text.
	probeThinkingBudget = 0
)

// Status is the health payload. Status is "ok" only when the backend answered.
type Status struct {
	Status        string `json:"status"`
	Model         string `json:"model"`
	HasCredential bool   `json:"hasCredential"`
	Reachable     bool   `json:"reachable"`
}

// Service probes the completion backend with a minimal real call.
type Service struct {
	client        llm.Client
	model         string
	hasCredential bool
	timeout       time.Duration
}

// NewService constructs a health service. A client is only called when
// hasCredential is true.
func NewService(client llm.Client, model string, hasCredential bool) *Service {
	return &Service{client: client, model: model, hasCredential: hasCredential, timeout: defaultTimeout}
}

// WithTimeout overrides the probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Status reports whether the backend is configured and answering.
func (s *Service) Status(ctx context.Context) Status {
	out := Status{Status: "degraded", Model: s.model, HasCredential: s.hasCredential}
	if !s.hasCredential || s.client == nil {
		return out
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	_, err := s.client.Complete(probeCtx, llm.Request{
		Prompt:         probePrompt,
		Model:          s.model,
		MaxTokens:      probeMaxTokens,
		ThinkingBudget: llm.Int(probeThinkingBudget),
	})
	if err != nil {
		telemetry.Warn("health.probe_failed", map[string]any{
			"model":       s.model,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err,
		})
		return out
	}
	out.Reachable = true
	out.Status = "ok"
	return out
}
