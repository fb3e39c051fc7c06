package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"sport-backend/internal/extract"
	"sport-backend/internal/llm"
	"sport-backend/internal/profile"
	"sport-backend/internal/prompt"
	"sport-backend/internal/recommendation"
	"sport-backend/internal/shared/metrics"
	"sport-backend/internal/shared/telemetry"
)

// Config is the immutable sampling and schema setup of a Service.
type Config struct {
	Schema        recommendation.Schema
	Model         string
	Temperature   float64
	TopP          float64
	MaxTokens     int
	JSONMode      bool
	HasCredential bool
}

// Service turns a profile into a validated recommendation. It keeps no
// per-request state and is safe for concurrent use.
type Service struct {
	Extractor *extract.Extractor
	Config    Config
}

// NewService wires an extractor around client.
func NewService(client llm.Client, cfg Config, policy extract.Policy, attemptTimeout time.Duration) *Service {
	if cfg.Schema.Version == "" {
		cfg.Schema, _ = recommendation.Lookup(recommendation.DefaultVersion)
	}
	return &Service{
		Extractor: &extract.Extractor{Client: client, Policy: policy, AttemptTimeout: attemptTimeout},
		Config:    cfg,
	}
}

// Result is a recommendation with the attempt report that produced it.
type Result struct {
	Document recommendation.Document
	Report   extract.Report
}

// PlanResult is a training plan with the attempt report that produced it.
type PlanResult struct {
	Plan   recommendation.TrainingPlan
	Report extract.Report
}

// Analyze returns the recommendation for p.
func (s *Service) Analyze(ctx context.Context, p *profile.Profile) (recommendation.Document, error) {
	res, err := s.Recommend(ctx, p)
	return res.Document, err
}

// Recommend is Analyze with the attempt report attached. The report is
// populated on failure too.
func (s *Service) Recommend(ctx context.Context, p *profile.Profile) (Result, error) {
	if p == nil {
		return Result{}, ErrProfileRequired
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if !s.Config.HasCredential {
		return Result{}, llm.ErrNoCredential
	}

	schema := s.Config.Schema
	req := s.request(ctx, schema, p.Language(), prompt.Build(p, schema))

	start := time.Now()
	metrics.IncAnalysisStarted()
	doc, report, err := extract.RunAs[recommendation.Document](ctx, s.Extractor, req)
	s.finish(ctx, "analysis", schema.Version, start, report, err)
	if err != nil {
		return Result{Report: report}, err
	}
	return Result{Document: doc, Report: report}, nil
}

// Plan returns a training plan for sport.
func (s *Service) Plan(ctx context.Context, p *profile.Profile, sport string) (recommendation.TrainingPlan, error) {
	res, err := s.TrainingPlan(ctx, p, sport)
	return res.Plan, err
}

// TrainingPlan is Plan with the attempt report attached.
func (s *Service) TrainingPlan(ctx context.Context, p *profile.Profile, sport string) (PlanResult, error) {
	if p == nil {
		return PlanResult{}, ErrProfileRequired
	}
	sport = strings.TrimSpace(sport)
	if sport == "" {
		return PlanResult{}, ErrSportRequired
	}
	if err := p.Validate(); err != nil {
		return PlanResult{}, err
	}
	if !s.Config.HasCredential {
		return PlanResult{}, llm.ErrNoCredential
	}

	req := s.request(ctx, recommendation.Plan, p.Language(), prompt.BuildPlan(p, sport))

	start := time.Now()
	metrics.IncAnalysisStarted()
	plan, report, err := extract.RunAs[recommendation.TrainingPlan](ctx, s.Extractor, req)
	s.finish(ctx, "training_plan", recommendation.Plan.Version, start, report, err)
	if err != nil {
		return PlanResult{Report: report}, err
	}
	return PlanResult{Plan: plan, Report: report}, nil
}

func (s *Service) request(ctx context.Context, schema recommendation.Schema, language, userPrompt string) extract.Request {
	return extract.Request{
		Schema:    schema,
		RequestID: requestIDFromContext(ctx),
		Completion: llm.Request{
			System:      prompt.SystemMessage(language),
			Prompt:      userPrompt,
			Model:       s.Config.Model,
			Language:    language,
			Temperature: llm.Float(s.Config.Temperature),
			TopP:        llm.Float(s.Config.TopP),
			MaxTokens:   s.Config.MaxTokens,
			JSONMode:    s.Config.JSONMode,
		},
	}
}

func (s *Service) finish(ctx context.Context, kind, version string, start time.Time, report extract.Report, err error) {
	metrics.ObserveAnalysisDurationMs(metrics.SinceMillis(start))
	fields := map[string]any{
		"request_id":     requestIDFromContext(ctx),
		"kind":           kind,
		"schema_version": version,
		"attempts":       report.Attempts,
		"duration_ms":    time.Since(start).Milliseconds(),
	}
	if err == nil {
		metrics.IncAnalysisCompleted()
		telemetry.Info("analysis.completed", fields)
		return
	}
	category := FailureCategory(err)
	metrics.IncAnalysisFailed(category)
	fields["category"] = category
	fields["error"] = err
	telemetry.Warn("analysis.failed", fields)
}

// FailureCategory classifies an Analyze or Plan error for logs and metrics.
func FailureCategory(err error) string {
	var xerr *extract.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &xerr):
		return string(xerr.Category)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, llm.ErrNoCredential):
		return "not_configured"
	default:
		return "internal"
	}
}
