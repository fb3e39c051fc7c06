package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sport-backend/internal/llm"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient(Config{APIKey: "test-key", BaseURL: url, Model: "test-model", Timeout: timeout})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresCredential(t *testing.T) {
	if _, err := NewClient(Config{APIKey: "  "}); !errors.Is(err, llm.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	client, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != DefaultBaseURL || client.Model() != DefaultModel {
		t.Fatalf("unexpected defaults: %s %s", client.baseURL, client.Model())
	}
}

func TestCompleteSendsRequestFields(t *testing.T) {
	var mu sync.Mutex
	var body map[string]any
	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		body = payload
		auth = r.Header.Get("Authorization")
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"sport\":\"Natation\"} "}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	got, err := client.Complete(context.Background(), llm.Request{
		System:      "Respond with JSON only.",
		Prompt:      "recommend a sport",
		Language:    "fr",
		Temperature: llm.Float(0.3),
		TopP:        llm.Float(0.9),
		MaxTokens:   8192,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"sport":"Natation"}` {
		t.Fatalf("unexpected content %q", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if auth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if body["model"] != "test-model" || body["temperature"] != 0.3 || body["top_p"] != 0.9 || body["max_tokens"] != float64(8192) {
		t.Fatalf("unexpected request body: %v", body)
	}
	if body["stream"] != false {
		t.Fatalf("expected stream=false")
	}
	rf, ok := body["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	messages := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	system := messages[0].(map[string]any)
	if system["role"] != "system" || !strings.Contains(system["content"].(string), `"fr"`) {
		t.Fatalf("expected language directive in system message, got %v", system)
	}
	user := messages[1].(map[string]any)
	if user["role"] != "user" || user["content"] != "recommend a sport" {
		t.Fatalf("unexpected user message %v", user)
	}
}

func TestCompleteOmitsUnsetSampling(t *testing.T) {
	var mu sync.Mutex
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		body = payload
		mu.Unlock()
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "Hello", Model: "override"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, key := range []string{"temperature", "top_p", "max_tokens", "response_format"} {
		if _, ok := body[key]; ok {
			t.Fatalf("expected %s to be omitted", key)
		}
	}
	if body["model"] != "override" {
		t.Fatalf("expected request model override, got %v", body["model"])
	}
}

func TestCompleteSendsZeroSampling(t *testing.T) {
	var mu sync.Mutex
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		body = payload
		mu.Unlock()
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "p", Temperature: llm.Float(0), TopP: llm.Float(0)}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, key := range []string{"temperature", "top_p"} {
		got, ok := body[key]
		if !ok {
			t.Fatalf("expected %s=0 to be sent", key)
		}
		if got != float64(0) {
			t.Fatalf("%s = %v, want 0", key, got)
		}
	}
}

func TestCompleteTransportErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "server error", status: http.StatusServiceUnavailable, body: `{"error":{"message":"overloaded","type":"server_error"}}`, wantStatus: 503, wantMsg: "overloaded"},
		{name: "rate limited plain body", status: http.StatusTooManyRequests, body: `slow down`, wantStatus: 429, wantMsg: "slow down"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantStatus: 200, wantMsg: "missing choices"},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`, wantStatus: 200, wantMsg: "empty content"},
		{name: "malformed body", status: http.StatusOK, body: `<html>`, wantStatus: 200, wantMsg: "response parse"},
		{name: "error object with 200", status: http.StatusOK, body: `{"error":{"message":"bad model","type":"invalid_request_error"}}`, wantStatus: 200, wantMsg: "bad model"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, time.Second)
			_, err := client.Complete(context.Background(), llm.Request{Prompt: "p"})
			var terr *llm.TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("expected TransportError, got %v", err)
			}
			if terr.Status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", terr.Status, tt.wantStatus)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(t, server.URL, 50*time.Millisecond)
	_, err := client.Complete(context.Background(), llm.Request{Prompt: "p"})
	var terr *llm.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestCompleteHonorsCallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := client.Complete(ctx, llm.Request{Prompt: "p"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected wrapped context.Canceled, got %v", err)
	}
}
