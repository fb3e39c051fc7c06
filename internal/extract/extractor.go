// Package extract turns free-form completion text into schema-conformant
// JSON, re-asking the model until the output validates or the attempt budget
// runs out.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sport-backend/internal/llm"
	"sport-backend/internal/recommendation"
	"sport-backend/internal/shared/metrics"
	"sport-backend/internal/shared/telemetry"
	"sport-backend/internal/shared/util"
)

// Request is one extraction job: a finished completion request and the
// schema its answer must satisfy.
type Request struct {
	Schema     recommendation.Schema
	Completion llm.Request
	RequestID  string
}

// Report describes the attempts made for one Run.
type Report struct {
	Attempts int
	Outcomes []Kind
	Duration time.Duration
}

// Extractor owns the retry policy. It holds no per-request state and may be
// shared by concurrent callers.
type Extractor struct {
	Client         llm.Client
	Policy         Policy
	AttemptTimeout time.Duration
}

// Run performs the attempt loop and returns the canonical JSON document.
//
// Errors: llm.ErrNoCredential immediately, ctx.Err() when the caller gives up,
// *Error when every attempt failed.
func (e *Extractor) Run(ctx context.Context, req Request) (json.RawMessage, Report, error) {
	if e.Client == nil {
		return nil, Report{}, llm.ErrNoCredential
	}
	start := time.Now()
	promptHash := util.HashPrompt(req.Completion.System, req.Completion.Prompt)

	history, err := RetryLoop(ctx, e.Policy, func(ctx context.Context, attempt int) Outcome {
		return e.attempt(ctx, req, attempt, promptHash)
	})

	report := Report{Attempts: len(history), Duration: time.Since(start)}
	for _, out := range history {
		report.Outcomes = append(report.Outcomes, out.Kind)
	}

	switch {
	case err == nil:
		return history[len(history)-1].Document, report, nil
	case errors.Is(err, ErrExhausted):
		xerr := exhaustionError(history)
		telemetry.Warn("llm.extraction_failed", map[string]any{
			"request_id":          req.RequestID,
			"schema_version":      req.Schema.Version,
			"category":            string(xerr.Category),
			"attempts":            xerr.Attempts,
			"transport_failures":  xerr.TransportFailures,
			"parse_failures":      xerr.ParseFailures,
			"validation_failures": xerr.ValidationFailures,
		})
		return nil, report, xerr
	default:
		return nil, report, err
	}
}

func (e *Extractor) attempt(ctx context.Context, req Request, attempt int, promptHash string) Outcome {
	attemptCtx := ctx
	cancel := func() {}
	if e.AttemptTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, e.AttemptTimeout)
	}
	start := time.Now()
	raw, callErr := e.Client.Complete(attemptCtx, req.Completion)
	cancel()

	var out Outcome
	if err := ctx.Err(); err != nil {
		out = Outcome{Verdict: Fatal, Kind: KindCanceled, Err: err}
	} else {
		out = Decide(raw, callErr, req.Schema)
	}

	metrics.IncLLMAttempt(string(out.Kind))

	fields := map[string]any{
		"request_id":     req.RequestID,
		"schema_version": req.Schema.Version,
		"attempt":        attempt,
		"outcome":        out.Verdict.String(),
		"kind":           string(out.Kind),
		"prompt_hash":    promptHash,
		"duration_ms":    time.Since(start).Milliseconds(),
	}
	if out.Stage != "" {
		fields["parse_stage"] = string(out.Stage)
	}
	if out.Err != nil {
		fields["error"] = out.Err.Error()
	}
	if out.Kind == KindParse || out.Kind == KindValidation {
		telemetry.Debug("llm.attempt_output", map[string]any{
			"request_id": req.RequestID,
			"attempt":    attempt,
			"raw":        util.Truncate(raw, 1000),
		})
	}
	if out.Verdict == Success {
		telemetry.Info("llm.attempt", fields)
	} else {
		telemetry.Warn("llm.attempt", fields)
	}
	return out
}

// RunAs runs the extractor and decodes the document into T.
func RunAs[T any](ctx context.Context, e *Extractor, req Request) (T, Report, error) {
	var zero T
	raw, report, err := e.Run(ctx, req)
	if err != nil {
		return zero, report, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, report, fmt.Errorf("decode %s document: %w", req.Schema.Version, err)
	}
	return out, report, nil
}
