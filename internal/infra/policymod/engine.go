// Package policymod evaluates a local OPA bundle as the authoritative
// moderation backend when no remote moderation service is configured.
package policymod

import (
	"context"
	"encoding/json"
	"errors"

	"veritas/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.veritas.moderation.result"

type Engine struct {
	query rego.PreparedEvalQuery
}

type moderationInput struct {
	SubmissionID string   `json:"submission_id"`
	MediaKind    string   `json:"media_kind"`
	Submitter    string   `json:"submitter"`
	PayloadText  string   `json:"payload_text"`
	Keywords     []string `json:"keywords,omitempty"`
}

func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	if bundlePath == "" {
		return nil, errors.New("bundle path is required")
	}
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, sub domain.Submission) (domain.ModerationOutput, error) {
	if e == nil {
		return domain.ModerationOutput{}, errors.New("moderation engine is nil")
	}
	input := moderationInput{
		SubmissionID: sub.ID,
		MediaKind:    string(sub.MediaKind),
		Submitter:    sub.Submitter,
		PayloadText:  string(sub.Payload),
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.ModerationOutput{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.ModerationOutput{}, errors.New("empty moderation result")
	}
	out, err := decodeModerationResult(results[0].Expressions[0].Value)
	if err != nil {
		return domain.ModerationOutput{}, err
	}
	switch out.Action {
	case domain.ModerationAllow, domain.ModerationReview, domain.ModerationBlock:
	default:
		return domain.ModerationOutput{}, errors.New("moderation result action is invalid")
	}
	return out, nil
}

func decodeModerationResult(value any) (domain.ModerationOutput, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.ModerationOutput{}, err
	}
	var out domain.ModerationOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		return domain.ModerationOutput{}, err
	}
	return out, nil
}
