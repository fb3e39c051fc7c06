package gemini

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

	"google.golang.org/genai"

	"sport-backend/internal/llm"
)

func TestNewClientRequiresCredential(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); !errors.Is(err, llm.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "nil", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{
			name: "no parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
			wantErr: true,
		},
		{
			name: "joins text parts and skips thoughts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `{"sport":`},
				{Text: `"Swimming"}`},
			}}}}},
			want: `{"sport":"Swimming"}`,
		},
		{
			name: "blank text",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("responseText: %v", err)
			}
			if got != tt.want {
				t.Fatalf("responseText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompleteAgainstFakeEndpoint(t *testing.T) {
	var mu sync.Mutex
	var path string
	var body map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		path = r.URL.Path
		body = payload
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"sport\":\"Schwimmen\"}"}]}}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":4,"totalTokenCount":7}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", BaseURL: server.URL, Model: "gemini-test", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Complete(context.Background(), llm.Request{
		System:      "JSON only.",
		Prompt:      "recommend",
		Language:    "de",
		Temperature: llm.Float(0.3),
		TopP:        llm.Float(0.9),
		MaxTokens:   256,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"sport":"Schwimmen"}` {
		t.Fatalf("unexpected text %q", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(path, "gemini-test:generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	sys, _ := json.Marshal(body["systemInstruction"])
	if !strings.Contains(string(sys), `\"de\"`) {
		t.Fatalf("expected language directive in system instruction, got %s", sys)
	}
	gen, ok := body["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig, got %v", body)
	}
	if gen["maxOutputTokens"] != float64(256) || gen["responseMimeType"] != "application/json" {
		t.Fatalf("unexpected generationConfig %v", gen)
	}
	if _, ok := gen["thinkingConfig"]; ok {
		t.Fatalf("expected no thinkingConfig without a budget, got %v", gen)
	}
}

func TestCompleteSendsExplicitZeros(t *testing.T) {
	var mu sync.Mutex
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		body = payload
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", BaseURL: server.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "p", Temperature: llm.Float(0), ThinkingBudget: llm.Int(0)}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	gen, ok := body["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig, got %v", body)
	}
	if got, ok := gen["temperature"]; !ok || got != float64(0) {
		t.Fatalf("expected temperature 0 in generationConfig, got %v", gen)
	}
	if _, ok := gen["topP"]; ok {
		t.Fatalf("expected unset topP to be omitted, got %v", gen)
	}
	thinking, ok := gen["thinkingConfig"].(map[string]any)
	if !ok || thinking["thinkingBudget"] != float64(0) {
		t.Fatalf("expected thinkingBudget 0, got %v", gen["thinkingConfig"])
	}
}

func TestCompleteWrapsAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", BaseURL: server.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Prompt: "p"})
	var terr *llm.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Provider != "gemini" {
		t.Fatalf("unexpected provider %q", terr.Provider)
	}
}
