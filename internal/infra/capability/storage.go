package capability

import (
	"context"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

type StorageGateway struct {
	c *client
}

func NewStorageGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *StorageGateway {
	return &StorageGateway{c: newClient(domain.CapabilityStorage, endpoint, apiKey, timeout, log)}
}

func (g *StorageGateway) Available() bool { return g.c.Available() }
func (g *StorageGateway) ResetQuota()     { g.c.ResetQuota() }

func (g *StorageGateway) Invoke(ctx context.Context, input domain.StorageUploadInput) domain.CapabilityResult[domain.StorageOutput] {
	return invoke(ctx, g.c, "/v1/objects", input, MockStorage)
}

// MockStorage produces a content-addressed reference, so replays of the
// same submission resolve to the same reference.
func MockStorage(input domain.StorageUploadInput) domain.StorageOutput {
	return domain.StorageOutput{
		Reference: "cas://" + input.ContentHash,
		Provider:  "mock",
		SizeBytes: len(input.Payload),
	}
}
