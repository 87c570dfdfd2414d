package policymod

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"veritas/internal/domain"
)

const testPolicy = `package veritas.moderation

import rego.v1

default result := {"action": "allow", "categories": [], "reason": ""}

result := {"action": "block", "categories": ["denylist"], "reason": "submitter denied"} if {
	input.submitter == "blocked-user"
}

result := {"action": "review", "categories": ["keywords"], "reason": "sensitive term"} if {
	contains(input.payload_text, "sensitive")
}
`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moderation.rego")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func submission(id, submitter, payload string) domain.Submission {
	return domain.Submission{
		ID:        id,
		Submitter: submitter,
		Payload:   []byte(payload),
		MediaKind: domain.MediaImage,
	}
}

func TestEvaluateDefaultAllow(t *testing.T) {
	engine, err := NewEngineFromBundlePath(context.Background(), writePolicy(t, testPolicy))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	out, err := engine.Evaluate(context.Background(), submission("s1", "anyone", "plain text"))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Action != domain.ModerationAllow {
		t.Fatalf("expected allow, got %s", out.Action)
	}
}

func TestEvaluateBlocksDeniedSubmitter(t *testing.T) {
	engine, err := NewEngineFromBundlePath(context.Background(), writePolicy(t, testPolicy))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	out, err := engine.Evaluate(context.Background(), submission("s1", "blocked-user", "plain text"))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Action != domain.ModerationBlock {
		t.Fatalf("expected block, got %s", out.Action)
	}
	if out.Reason == "" || len(out.Categories) == 0 {
		t.Fatalf("block decisions must carry reason and categories: %+v", out)
	}
}

func TestEvaluateReviewsSensitivePayload(t *testing.T) {
	engine, err := NewEngineFromBundlePath(context.Background(), writePolicy(t, testPolicy))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	out, err := engine.Evaluate(context.Background(), submission("s1", "anyone", "very sensitive material"))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Action != domain.ModerationReview {
		t.Fatalf("expected review, got %s", out.Action)
	}
}

func TestEvaluateRejectsInvalidAction(t *testing.T) {
	bad := `package veritas.moderation

import rego.v1

default result := {"action": "maybe"}
`
	engine, err := NewEngineFromBundlePath(context.Background(), writePolicy(t, bad))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if _, err := engine.Evaluate(context.Background(), submission("s1", "anyone", "x")); err == nil {
		t.Fatal("unknown actions must be rejected")
	}
}

func TestNewEngineRequiresPath(t *testing.T) {
	if _, err := NewEngineFromBundlePath(context.Background(), ""); err == nil {
		t.Fatal("empty bundle path must error")
	}
}
