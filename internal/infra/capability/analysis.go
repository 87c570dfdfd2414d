package capability

import (
	"context"
	"fmt"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

type AnalysisGateway struct {
	c *client
}

func NewAnalysisGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *AnalysisGateway {
	return &AnalysisGateway{c: newClient(domain.CapabilityAnalysis, endpoint, apiKey, timeout, log)}
}

func (g *AnalysisGateway) Available() bool { return g.c.Available() }
func (g *AnalysisGateway) ResetQuota()     { g.c.ResetQuota() }

func (g *AnalysisGateway) Invoke(ctx context.Context, input domain.AnalysisInput) domain.CapabilityResult[domain.AnalysisOutput] {
	return invoke(ctx, g.c, "/v1/analyze", input, MockAnalysis)
}

// MockAnalysis synthesizes a content analysis purely from the input so
// downstream scoring always receives a typed, bounded value.
func MockAnalysis(input domain.AnalysisInput) domain.AnalysisOutput {
	sub := input.Submission
	seed := mockSeed(sub.Payload)
	keywords := []string{string(sub.MediaKind)}
	if sub.Metadata != nil && sub.Metadata.Location != "" {
		keywords = append(keywords, sub.Metadata.Location)
	}
	return domain.AnalysisOutput{
		Credibility: seedRange(seed, 0, 40, 70),
		Summary:     fmt.Sprintf("offline analysis of %s submission %s", sub.MediaKind, sub.ID),
		Keywords:    keywords,
	}
}
