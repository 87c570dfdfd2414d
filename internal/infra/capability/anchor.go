package capability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

type AnchorGateway struct {
	c       *client
	chainID string
}

func NewAnchorGateway(endpoint, apiKey, chainID string, timeout time.Duration, log zerolog.Logger) *AnchorGateway {
	if chainID == "" {
		chainID = "veritas-sim"
	}
	return &AnchorGateway{
		c:       newClient(domain.CapabilityAnchor, endpoint, apiKey, timeout, log),
		chainID: chainID,
	}
}

func (g *AnchorGateway) Available() bool { return g.c.Available() }
func (g *AnchorGateway) ResetQuota()     { g.c.ResetQuota() }

func (g *AnchorGateway) Invoke(ctx context.Context, input domain.AnchorRequest) domain.CapabilityResult[domain.AnchorOutput] {
	chainID := g.chainID
	return invoke(ctx, g.c, "/v1/anchors", input, func(in domain.AnchorRequest) domain.AnchorOutput {
		return MockAnchor(in, chainID)
	})
}

// MockAnchor derives a stable pseudo transaction id from the content hash,
// keeping replays idempotent.
func MockAnchor(input domain.AnchorRequest, chainID string) domain.AnchorOutput {
	sum := sha256.Sum256([]byte(chainID + ":" + input.ContentHash))
	return domain.AnchorOutput{
		TxID:       "0x" + hex.EncodeToString(sum[:16]),
		ChainID:    chainID,
		AnchoredAt: time.Unix(0, 0).UTC(),
	}
}
