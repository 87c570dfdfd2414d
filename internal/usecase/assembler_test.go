package usecase

import (
	"testing"

	"veritas/internal/domain"
)

func realResult[T any](v T) domain.CapabilityResult[T] {
	return domain.RealResult(v)
}

func mockedResult[T any](v T) domain.CapabilityResult[T] {
	return domain.MockedResult(v, nil)
}

func fullInputs() ReportInputs {
	df := realResult(domain.DeepfakeOutput{ManipulationConfidence: 10})
	img := realResult(domain.ImageCheckOutput{Authenticity: 90})
	return ReportInputs{
		SubmissionID: "sub-1",
		Moderation:   realResult(domain.ModerationOutput{Action: domain.ModerationAllow}),
		Analysis:     realResult(domain.AnalysisOutput{Credibility: 85}),
		Deepfake:     &df,
		ImageCheck:   &img,
	}
}

func TestTrustScoreWeightedCombination(t *testing.T) {
	// 0.45*85 + 0.25*90 + 0.20*90 + 0.10*100 = 88.75
	if got := TrustScore(fullInputs()); got != 89 {
		t.Fatalf("expected 89, got %d", got)
	}
}

func TestTrustScoreRenormalizesOverRealSubScores(t *testing.T) {
	in := fullInputs()
	in.Deepfake = nil
	in.ImageCheck = nil
	in.Moderation = mockedResult(domain.ModerationOutput{Action: domain.ModerationAllow})
	// Only analysis is real, so the score is its credibility.
	if got := TrustScore(in); got != 85 {
		t.Fatalf("expected 85, got %d", got)
	}
}

func TestTrustScoreAllMockedIsZero(t *testing.T) {
	df := mockedResult(domain.DeepfakeOutput{ManipulationConfidence: 0})
	in := ReportInputs{
		Moderation: mockedResult(domain.ModerationOutput{Action: domain.ModerationAllow}),
		Analysis:   mockedResult(domain.AnalysisOutput{Credibility: 99}),
		Deepfake:   &df,
	}
	if got := TrustScore(in); got != 0 {
		t.Fatalf("mocked sub-scores must not contribute, got %d", got)
	}
}

func TestTrustScorePenalizesReview(t *testing.T) {
	allow := fullInputs()
	review := fullInputs()
	review.Moderation = realResult(domain.ModerationOutput{Action: domain.ModerationReview})
	if TrustScore(review) >= TrustScore(allow) {
		t.Fatal("review outcome must lower the trust score")
	}
}

func TestTrustScoreClampsOutOfRangeSubScores(t *testing.T) {
	in := fullInputs()
	in.Analysis = realResult(domain.AnalysisOutput{Credibility: 500})
	if got := TrustScore(in); got > 100 {
		t.Fatalf("score must be clamped to 100, got %d", got)
	}
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		score  int
		mocked bool
		flags  []string
		want   domain.VerificationStatus
	}{
		{score: 95, want: domain.VerificationVerified},
		{score: 80, want: domain.VerificationVerified},
		{score: 79, want: domain.VerificationPending},
		{score: 59, want: domain.VerificationDisputed},
		{score: 40, want: domain.VerificationDisputed},
		{score: 39, want: domain.VerificationPending},
		{score: 95, mocked: true, want: domain.VerificationPending},
		{score: 95, flags: []string{"moderation:review"}, want: domain.VerificationFlagged},
		{score: 10, mocked: true, flags: []string{"x"}, want: domain.VerificationFlagged},
	}
	for _, tc := range cases {
		if got := classify(tc.score, tc.mocked, tc.flags); got != tc.want {
			t.Fatalf("classify(%d, %v, %v) = %s, want %s", tc.score, tc.mocked, tc.flags, got, tc.want)
		}
	}
}

func TestAssembleReportMarksMockedStages(t *testing.T) {
	in := fullInputs()
	in.StageResults = []domain.StageResult{
		{Stage: domain.StageStorageUpload, Capability: domain.CapabilityStorage, Origin: domain.OriginMocked},
		{Stage: domain.StageAnchor, Capability: domain.CapabilityAnchor, Origin: domain.OriginReal},
	}
	report := AssembleReport(in)
	if len(report.MockedStages) != 1 || report.MockedStages[0] != domain.StageStorageUpload {
		t.Fatalf("unexpected mocked stages: %v", report.MockedStages)
	}
	if report.Status != domain.VerificationPending {
		t.Fatalf("mocked storage is a required capability, expected pending, got %s", report.Status)
	}
}
