// Package gemini adapts Google's Gemini API to llm.Client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"sport-backend/internal/llm"
	"sport-backend/internal/shared/telemetry"
	"sport-backend/internal/shared/util"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 120 * time.Second

	providerName = "gemini"
)

// Config holds the Gemini connection settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements llm.Client on top of genai.Models.GenerateContent.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a Gemini client. The genai client is safe for
// concurrent use and is shared across requests.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrNoCredential
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Model returns the default model identifier.
func (c *Client) Model() string { return c.model }

// Complete sends one GenerateContent call and returns the concatenated text parts.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = c.model
	}
	system := llm.WithLanguageDirective(in.System, in.Language)

	config := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if in.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*in.Temperature))
	}
	if in.TopP != nil {
		config.TopP = genai.Ptr(float32(*in.TopP))
	}
	if in.MaxTokens > 0 {
		config.MaxOutputTokens = int32(in.MaxTokens)
	}
	if in.ThinkingBudget != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(*in.ThinkingBudget)),
		}
	}
	if in.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(in.Prompt), config)
	if err != nil {
		return "", transportErr(err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", transportErr(err)
	}

	fields := map[string]any{
		"provider":    providerName,
		"model":       model,
		"prompt_hash": util.HashPrompt(system, in.Prompt),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if usage := resp.UsageMetadata; usage != nil {
		fields["prompt_tokens"] = usage.PromptTokenCount
		fields["completion_tokens"] = usage.CandidatesTokenCount
		fields["total_tokens"] = usage.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("response missing candidates")
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("response missing content parts")
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("response empty content")
	}
	return text, nil
}

func transportErr(err error) error {
	return &llm.TransportError{Provider: providerName, Err: err}
}

var _ llm.Client = (*Client)(nil)
