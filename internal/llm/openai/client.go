package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sport-backend/internal/llm"
	"sport-backend/internal/shared/telemetry"
	"sport-backend/internal/shared/util"
)

const (
	// DefaultBaseURL points at Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel   = "llama-3.3-70b-versatile"
	DefaultTimeout = 120 * time.Second

	providerName = "openai"
	maxErrorBody = 512
)

// Config holds the connection settings for an OpenAI-compatible endpoint.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements llm.Client using the Chat Completions wire format.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI-compatible client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrNoCredential
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Model returns the default model identifier.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatResponseUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type chatResponseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends one chat completion and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = c.model
	}
	system := llm.WithLanguageDirective(in.System, in.Language)

	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: in.Prompt})

	reqBody := chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: in.MaxTokens,
	}
	if in.Temperature != nil {
		reqBody.Temperature = llm.Float(*in.Temperature)
	}
	if in.TopP != nil {
		reqBody.TopP = llm.Float(*in.TopP)
	}
	if in.JSONMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", transportErr(0, fmt.Errorf("request timeout: %w", err))
		}
		return "", transportErr(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportErr(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", transportErr(resp.StatusCode, errors.New(errorMessage(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", transportErr(resp.StatusCode, fmt.Errorf("response parse: %w", err))
	}
	if parsed.Error != nil {
		return "", transportErr(resp.StatusCode, fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return "", transportErr(resp.StatusCode, errors.New("response missing choices"))
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", transportErr(resp.StatusCode, errors.New("response empty content"))
	}
	logUsage(model, util.HashPrompt(system, in.Prompt), time.Since(start), parsed.Usage)
	return content, nil
}

func transportErr(status int, err error) error {
	return &llm.TransportError{Provider: providerName, Status: status, Err: err}
}

// errorMessage prefers the API's own error message over the raw body.
func errorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty error body"
	}
	return util.Truncate(msg, maxErrorBody)
}

func logUsage(model, promptHash string, elapsed time.Duration, usage *chatResponseUsage) {
	fields := map[string]any{
		"provider":    providerName,
		"model":       model,
		"prompt_hash": promptHash,
		"duration_ms": elapsed.Milliseconds(),
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Client = (*Client)(nil)
