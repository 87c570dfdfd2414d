package usecase

import (
	"context"
	"fmt"
	"time"

	"veritas/internal/domain"
)

// CoSigner appends collaborator co-signatures to stored reports.
// Co-signatures only ever raise status; at quorum the report is promoted
// to verified unless it is flagged.
type CoSigner struct {
	reports domain.VerificationReportRepository
}

func NewCoSigner(reports domain.VerificationReportRepository) *CoSigner {
	return &CoSigner{reports: reports}
}

func (s *CoSigner) Append(ctx context.Context, reportID string, sig domain.CoSignature) (*domain.VerificationReport, error) {
	if sig.Signer == "" || sig.Signature == "" {
		return nil, fmt.Errorf("%w: co-signature requires signer and signature", domain.ErrSubmissionInvalid)
	}
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	for _, existing := range report.CoSignatures {
		if existing.Signer == sig.Signer {
			return report, nil
		}
	}
	if sig.SignedAt.IsZero() {
		sig.SignedAt = time.Now().UTC()
	}
	report.ApplyCoSignature(sig)
	if err := s.reports.Save(ctx, *report); err != nil {
		return nil, err
	}
	return report, nil
}
