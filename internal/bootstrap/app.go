package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"sport-backend/internal/analyses"
	"sport-backend/internal/extract"
	"sport-backend/internal/llm"
	"sport-backend/internal/llm/gemini"
	"sport-backend/internal/llm/openai"
	"sport-backend/internal/recommendation"
	"sport-backend/internal/services/health"
	"sport-backend/internal/shared/config"
	"sport-backend/internal/shared/server"
	"sport-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Client          llm.Client
	Model           string
	Schema          recommendation.Schema
	AnalysesService *analyses.Service
	HealthService   *health.Service
	AnalysisHandler *analyses.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	schema, err := recommendation.Lookup(cfg.SchemaVersion)
	if err != nil {
		return nil, err
	}

	client, model, err := BuildClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	if !cfg.LLM.HasCredential() {
		telemetry.Warn("llm.not_configured", map[string]any{
			"provider": cfg.LLM.Provider,
			"model":    model,
		})
	}

	policy := extract.Policy{
		MaxAttempts: cfg.LLM.MaxAttempts,
		BaseDelay:   cfg.LLM.RetryBaseDelay(),
		MaxDelay:    extract.DefaultMaxDelay,
	}
	svc := analyses.NewService(client, analyses.Config{
		Schema:        schema,
		Model:         model,
		Temperature:   cfg.LLM.Temperature,
		TopP:          cfg.LLM.TopP,
		MaxTokens:     cfg.LLM.MaxTokens,
		JSONMode:      cfg.LLM.JSONMode,
		HasCredential: cfg.LLM.HasCredential(),
	}, policy, cfg.LLM.Timeout())
	healthSvc := health.NewService(client, model, cfg.LLM.HasCredential())
	handler := analyses.NewHandler(svc, healthSvc)

	app := &App{
		Config:          cfg,
		Client:          client,
		Model:           model,
		Schema:          schema,
		AnalysesService: svc,
		HealthService:   healthSvc,
		AnalysisHandler: handler,
	}
	app.Router = server.NewRouter(cfg, handler)
	return app, nil
}

// BuildClient selects the completion adapter for the configured provider.
// Without a credential it returns llm.Unconfigured and the provider's
// default model name.
func BuildClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, string, error) {
	switch cfg.Provider {
	case llm.ProviderGemini:
		model := firstNonEmpty(cfg.Model, gemini.DefaultModel)
		if !cfg.HasCredential() {
			return llm.Unconfigured{}, model, nil
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   model,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, "", fmt.Errorf("gemini client: %w", err)
		}
		return client, client.Model(), nil
	case llm.ProviderOpenAI, "":
		model := firstNonEmpty(cfg.Model, openai.DefaultModel)
		if !cfg.HasCredential() {
			return llm.Unconfigured{}, model, nil
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   model,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, "", fmt.Errorf("openai client: %w", err)
		}
		return client, client.Model(), nil
	default:
		return nil, "", fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
