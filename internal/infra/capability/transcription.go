package capability

import (
	"context"
	"fmt"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

type TranscriptionGateway struct {
	c *client
}

func NewTranscriptionGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *TranscriptionGateway {
	return &TranscriptionGateway{c: newClient(domain.CapabilityTranscription, endpoint, apiKey, timeout, log)}
}

func (g *TranscriptionGateway) Available() bool { return g.c.Available() }
func (g *TranscriptionGateway) ResetQuota()     { g.c.ResetQuota() }

type transcribeRequest struct {
	SubmissionID string           `json:"submission_id"`
	MediaKind    domain.MediaKind `json:"media_kind"`
	Payload      []byte           `json:"payload"`
}

func (g *TranscriptionGateway) Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.TranscriptionOutput] {
	req := transcribeRequest{SubmissionID: sub.ID, MediaKind: sub.MediaKind, Payload: sub.Payload}
	return invoke(ctx, g.c, "/v1/transcribe", req, func(transcribeRequest) domain.TranscriptionOutput {
		seed := mockSeed(sub.Payload)
		return domain.TranscriptionOutput{
			Text:       fmt.Sprintf("synthetic transcript for %s (%d bytes of %s)", sub.ID, len(sub.Payload), sub.MediaKind),
			Language:   "en",
			Confidence: float64(seedRange(seed, 0, 40, 70)) / 100,
		}
	})
}
