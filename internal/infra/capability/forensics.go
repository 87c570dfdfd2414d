package capability

import (
	"context"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

// DeepfakeGateway and ImageCheckGateway feed the manipulation and
// authenticity sub-scores of the trust score.

type DeepfakeGateway struct {
	c *client
}

func NewDeepfakeGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *DeepfakeGateway {
	return &DeepfakeGateway{c: newClient(domain.CapabilityDeepfake, endpoint, apiKey, timeout, log)}
}

func (g *DeepfakeGateway) Available() bool { return g.c.Available() }
func (g *DeepfakeGateway) ResetQuota()     { g.c.ResetQuota() }

type forensicsRequest struct {
	SubmissionID string           `json:"submission_id"`
	MediaKind    domain.MediaKind `json:"media_kind"`
	Payload      []byte           `json:"payload"`
}

func (g *DeepfakeGateway) Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.DeepfakeOutput] {
	req := forensicsRequest{SubmissionID: sub.ID, MediaKind: sub.MediaKind, Payload: sub.Payload}
	return invoke(ctx, g.c, "/v1/deepfake", req, func(forensicsRequest) domain.DeepfakeOutput {
		seed := mockSeed(sub.Payload)
		return domain.DeepfakeOutput{
			ManipulationConfidence: seedRange(seed, 1, 5, 35),
			Model:                  "heuristic-offline",
		}
	})
}

type ImageCheckGateway struct {
	c *client
}

func NewImageCheckGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *ImageCheckGateway {
	return &ImageCheckGateway{c: newClient(domain.CapabilityImageCheck, endpoint, apiKey, timeout, log)}
}

func (g *ImageCheckGateway) Available() bool { return g.c.Available() }
func (g *ImageCheckGateway) ResetQuota()     { g.c.ResetQuota() }

func (g *ImageCheckGateway) Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.ImageCheckOutput] {
	req := forensicsRequest{SubmissionID: sub.ID, MediaKind: sub.MediaKind, Payload: sub.Payload}
	return invoke(ctx, g.c, "/v1/image-verify", req, func(forensicsRequest) domain.ImageCheckOutput {
		seed := mockSeed(sub.Payload)
		return domain.ImageCheckOutput{
			Authenticity: seedRange(seed, 2, 55, 85),
			Notes:        []string{"offline heuristic check"},
		}
	})
}
