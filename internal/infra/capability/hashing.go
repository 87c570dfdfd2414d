package capability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"veritas/internal/domain"
)

// HashingGateway computes the content hash locally; it has no external
// dependency, so it is always available and its output is always real.
type HashingGateway struct{}

func NewHashingGateway() *HashingGateway { return &HashingGateway{} }

func (*HashingGateway) Available() bool { return true }

func (*HashingGateway) Invoke(_ context.Context, sub domain.Submission) domain.CapabilityResult[domain.HashOutput] {
	sum := sha256.Sum256(sub.Payload)
	return domain.RealResult(domain.HashOutput{
		Alg: "sha256",
		Hex: hex.EncodeToString(sum[:]),
	})
}
