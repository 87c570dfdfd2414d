package usecase

import (
	"math"
	"time"

	"veritas/internal/domain"

	"github.com/google/uuid"
)

// Trust score weights. Sub-scores from mocked capabilities are excluded and
// the remaining weights renormalized, so a degraded run is scored only on
// what was actually observed.
const (
	analysisWeight   = 0.45
	deepfakeWeight   = 0.25
	imageCheckWeight = 0.20
	moderationWeight = 0.10
)

const (
	verifiedThreshold = 80
	disputedLow       = 40
	disputedHigh      = 59
)

// requiredCapabilities must resolve against the real backend for a report
// to leave pending status.
var requiredCapabilities = map[string]struct{}{
	domain.CapabilityModeration: {},
	domain.CapabilityAnalysis:   {},
	domain.CapabilityStorage:    {},
	domain.CapabilityAnchor:     {},
}

type ReportInputs struct {
	SubmissionID string
	Moderation   domain.CapabilityResult[domain.ModerationOutput]
	Analysis     domain.CapabilityResult[domain.AnalysisOutput]
	Deepfake     *domain.CapabilityResult[domain.DeepfakeOutput]
	ImageCheck   *domain.CapabilityResult[domain.ImageCheckOutput]
	StageResults []domain.StageResult
	Flags        []string
}

// AssembleReport merges stage outputs into a verification report. The
// result is deterministic for a given set of inputs except for the fresh
// id and timestamp, which callers overwrite on replay.
func AssembleReport(in ReportInputs) domain.VerificationReport {
	score := TrustScore(in)
	return domain.VerificationReport{
		ID:           uuid.NewString(),
		SubmissionID: in.SubmissionID,
		TrustScore:   score,
		Status:       classify(score, requiredMocked(in.StageResults), in.Flags),
		StageResults: in.StageResults,
		MockedStages: mockedStages(in.StageResults),
		CreatedAt:    time.Now().UTC(),
	}
}

// TrustScore is the weighted combination of real sub-scores, clamped to
// [0,100]. With no real sub-score at all the score is zero.
func TrustScore(in ReportInputs) int {
	var sum, weight float64
	if in.Analysis.Origin == domain.OriginReal {
		sum += analysisWeight * float64(clampScore(in.Analysis.Value.Credibility))
		weight += analysisWeight
	}
	if in.Deepfake != nil && in.Deepfake.Origin == domain.OriginReal {
		sum += deepfakeWeight * float64(100-clampScore(in.Deepfake.Value.ManipulationConfidence))
		weight += deepfakeWeight
	}
	if in.ImageCheck != nil && in.ImageCheck.Origin == domain.OriginReal {
		sum += imageCheckWeight * float64(clampScore(in.ImageCheck.Value.Authenticity))
		weight += imageCheckWeight
	}
	if in.Moderation.Origin == domain.OriginReal {
		v := 100.0
		if in.Moderation.Value.Action == domain.ModerationReview {
			v = 25.0
		}
		sum += moderationWeight * v
		weight += moderationWeight
	}
	if weight == 0 {
		return 0
	}
	return clampScore(int(math.Round(sum / weight)))
}

func classify(score int, mockedRequired bool, flags []string) domain.VerificationStatus {
	if len(flags) > 0 {
		return domain.VerificationFlagged
	}
	if mockedRequired {
		return domain.VerificationPending
	}
	switch {
	case score >= verifiedThreshold:
		return domain.VerificationVerified
	case score >= disputedLow && score <= disputedHigh:
		return domain.VerificationDisputed
	}
	return domain.VerificationPending
}

func requiredMocked(results []domain.StageResult) bool {
	for _, r := range results {
		if r.Origin != domain.OriginMocked {
			continue
		}
		if _, required := requiredCapabilities[r.Capability]; required {
			return true
		}
	}
	return false
}

func mockedStages(results []domain.StageResult) []domain.Stage {
	var out []domain.Stage
	seen := make(map[domain.Stage]struct{})
	for _, r := range results {
		if r.Origin != domain.OriginMocked {
			continue
		}
		if _, dup := seen[r.Stage]; dup {
			continue
		}
		seen[r.Stage] = struct{}{}
		out = append(out, r.Stage)
	}
	return out
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
