package extract

import (
	"encoding/json"
	"errors"
	"fmt"

	"sport-backend/internal/llm"
	"sport-backend/internal/recommendation"
)

// Verdict is the decision taken after one attempt.
type Verdict int

const (
	Success Verdict = iota + 1
	Retry
	Fatal
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind classifies what happened during an attempt.
type Kind string

const (
	KindSuccess    Kind = "success"
	KindTransport  Kind = "transport"
	KindParse      Kind = "parse"
	KindValidation Kind = "validation"
	KindConfig     Kind = "config"
	KindCanceled   Kind = "canceled"
)

// Outcome is the result of one attempt. Document holds canonical JSON for
// the schema's declared fields and is set only on success.
type Outcome struct {
	Verdict  Verdict
	Kind     Kind
	Stage    Stage
	Document json.RawMessage
	Err      error
}

// Decide turns one completion result into an Outcome. It performs no I/O.
func Decide(raw string, callErr error, schema recommendation.Schema) Outcome {
	if callErr != nil {
		if errors.Is(callErr, llm.ErrNoCredential) {
			return Outcome{Verdict: Fatal, Kind: KindConfig, Err: callErr}
		}
		return Outcome{Verdict: Retry, Kind: KindTransport, Err: callErr}
	}

	parsed, err := Parse(raw, schema.Discriminators)
	if err != nil {
		return Outcome{Verdict: Retry, Kind: KindParse, Err: err}
	}

	projected, err := schema.Conform(parsed.Object)
	if err != nil {
		return Outcome{Verdict: Retry, Kind: KindValidation, Stage: parsed.Stage, Err: err}
	}
	doc, err := json.Marshal(projected)
	if err != nil {
		return Outcome{Verdict: Retry, Kind: KindValidation, Stage: parsed.Stage, Err: fmt.Errorf("encode document: %w", err)}
	}
	return Outcome{Verdict: Success, Kind: KindSuccess, Stage: parsed.Stage, Document: doc}
}
