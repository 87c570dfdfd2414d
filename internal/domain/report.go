package domain

import (
	"context"
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationDisputed VerificationStatus = "disputed"
	VerificationFlagged  VerificationStatus = "flagged"
)

// rank orders statuses for co-signature promotion; co-signatures only ever
// raise status, never lower it.
func (s VerificationStatus) rank() int {
	switch s {
	case VerificationPending:
		return 0
	case VerificationDisputed:
		return 1
	case VerificationVerified:
		return 2
	case VerificationFlagged:
		return 3
	}
	return 0
}

// Raise returns the higher of the two statuses. Flagged is sticky: once a
// report is flagged no co-signature can move it.
func (s VerificationStatus) Raise(to VerificationStatus) VerificationStatus {
	if s == VerificationFlagged {
		return s
	}
	if to.rank() > s.rank() {
		return to
	}
	return s
}

type StageResult struct {
	Stage      Stage      `json:"stage"`
	Capability string     `json:"capability,omitempty"`
	State      StageState `json:"state"`
	Origin     Origin     `json:"origin,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Flags      []string   `json:"flags,omitempty"`
}

type CoSignature struct {
	Signer    string    `json:"signer"`
	Signature string    `json:"signature"`
	SignedAt  time.Time `json:"signed_at"`
}

type VerificationReport struct {
	ID           string             `json:"id"`
	SubmissionID string             `json:"submission_id"`
	TrustScore   int                `json:"trust_score"`
	Status       VerificationStatus `json:"status"`
	StageResults []StageResult      `json:"stage_results"`
	MockedStages []Stage            `json:"mocked_stages,omitempty"`
	Narration    *NarrationOutput   `json:"narration,omitempty"`
	Translation  *TranslationOutput `json:"translation,omitempty"`
	CoSignatures []CoSignature      `json:"co_signatures,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// CoSignQuorum is the number of co-signatures that promotes a report to
// verified. Promotion only ever raises status.
const CoSignQuorum = 2

func (r *VerificationReport) ApplyCoSignature(sig CoSignature) {
	r.CoSignatures = append(r.CoSignatures, sig)
	if len(r.CoSignatures) >= CoSignQuorum {
		r.Status = r.Status.Raise(VerificationVerified)
	}
}

type VerificationReportRepository interface {
	Save(ctx context.Context, report VerificationReport) error
	FindByID(ctx context.Context, id string) (*VerificationReport, error)
	FindBySubmission(ctx context.Context, submissionID string) (*VerificationReport, error)
}
