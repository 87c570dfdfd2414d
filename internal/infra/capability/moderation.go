package capability

import (
	"bytes"
	"context"
	"strings"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

// ModerationPolicy is an authoritative local moderation backend (OPA
// bundle); it counts as a real origin when it resolves.
type ModerationPolicy interface {
	Evaluate(ctx context.Context, sub domain.Submission) (domain.ModerationOutput, error)
}

type ModerationGateway struct {
	c      *client
	policy ModerationPolicy
}

func NewModerationGateway(endpoint, apiKey string, timeout time.Duration, policy ModerationPolicy, log zerolog.Logger) *ModerationGateway {
	return &ModerationGateway{
		c:      newClient(domain.CapabilityModeration, endpoint, apiKey, timeout, log),
		policy: policy,
	}
}

func (g *ModerationGateway) Available() bool {
	return g.c.Available() || g.policy != nil
}

func (g *ModerationGateway) ResetQuota() { g.c.ResetQuota() }

type moderationRequest struct {
	SubmissionID string           `json:"submission_id"`
	MediaKind    domain.MediaKind `json:"media_kind"`
	Payload      []byte           `json:"payload"`
}

// Invoke resolves via remote service, local policy bundle, then keyword
// scan, in that order. A block from any resolved path is authoritative;
// the scan never converts a blockable payload into a pass.
func (g *ModerationGateway) Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.ModerationOutput] {
	if g.c.Available() && !g.c.QuotaExceeded() {
		req := moderationRequest{SubmissionID: sub.ID, MediaKind: sub.MediaKind, Payload: sub.Payload}
		return invoke(ctx, g.c, "/v1/moderate", req, func(moderationRequest) domain.ModerationOutput {
			return scanModeration(sub)
		})
	}
	if g.policy != nil {
		out, err := g.policy.Evaluate(ctx, sub)
		if err == nil {
			return domain.RealResult(out)
		}
		g.c.log.Warn().Err(err).Msg("moderation policy bundle failed, degrading to keyword scan")
	}
	return domain.MockedResult(scanModeration(sub), nil)
}

var (
	blockTerms  = []string{"banned-content", "csam", "beheading"}
	reviewTerms = []string{"graphic", "violence", "weapon"}
)

// scanModeration is the deterministic degraded path: a plain substring
// scan over the payload and enrichment metadata.
func scanModeration(sub domain.Submission) domain.ModerationOutput {
	haystack := bytes.ToLower(sub.Payload)
	if sub.Metadata != nil {
		haystack = append(haystack, []byte(strings.ToLower(sub.Metadata.Location+" "+sub.Metadata.CaptureMethod))...)
	}
	for _, term := range blockTerms {
		if bytes.Contains(haystack, []byte(term)) {
			return domain.ModerationOutput{
				Action:     domain.ModerationBlock,
				Categories: []string{term},
				Reason:     "prohibited term detected",
			}
		}
	}
	for _, term := range reviewTerms {
		if bytes.Contains(haystack, []byte(term)) {
			return domain.ModerationOutput{
				Action:     domain.ModerationReview,
				Categories: []string{term},
				Reason:     "sensitive term detected",
			}
		}
	}
	return domain.ModerationOutput{Action: domain.ModerationAllow}
}
