package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"veritas/internal/domain"
	"veritas/internal/infra/recordmem"

	"github.com/rs/zerolog"
)

type modStub struct {
	out    domain.ModerationOutput
	origin domain.Origin
}

func (s modStub) Available() bool { return true }
func (s modStub) Invoke(context.Context, domain.Submission) domain.CapabilityResult[domain.ModerationOutput] {
	return domain.CapabilityResult[domain.ModerationOutput]{Value: s.out, Origin: s.origin}
}

type hashStub struct{}

func (hashStub) Invoke(_ context.Context, sub domain.Submission) domain.CapabilityResult[domain.HashOutput] {
	sum := sha256.Sum256(sub.Payload)
	return domain.RealResult(domain.HashOutput{Alg: "sha256", Hex: hex.EncodeToString(sum[:])})
}

type transcriptionStub struct {
	mu     sync.Mutex
	called bool
}

func (s *transcriptionStub) Invoke(context.Context, domain.Submission) domain.CapabilityResult[domain.TranscriptionOutput] {
	s.mu.Lock()
	s.called = true
	s.mu.Unlock()
	return domain.RealResult(domain.TranscriptionOutput{Text: "transcript", Language: "en", Confidence: 0.9})
}

func (s *transcriptionStub) wasCalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.called
}

type analysisStub struct {
	out     domain.AnalysisOutput
	origin  domain.Origin
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (s *analysisStub) Invoke(context.Context, domain.AnalysisInput) domain.CapabilityResult[domain.AnalysisOutput] {
	if s.entered != nil {
		s.once.Do(func() { close(s.entered) })
	}
	if s.release != nil {
		<-s.release
	}
	return domain.CapabilityResult[domain.AnalysisOutput]{Value: s.out, Origin: s.origin}
}

type storageStub struct{ origin domain.Origin }

func (s storageStub) Invoke(_ context.Context, in domain.StorageUploadInput) domain.CapabilityResult[domain.StorageOutput] {
	return domain.CapabilityResult[domain.StorageOutput]{
		Value:  domain.StorageOutput{Reference: "cas://" + in.ContentHash, Provider: "test"},
		Origin: s.origin,
	}
}

type anchorStub struct{ origin domain.Origin }

func (s anchorStub) Invoke(_ context.Context, in domain.AnchorRequest) domain.CapabilityResult[domain.AnchorOutput] {
	return domain.CapabilityResult[domain.AnchorOutput]{
		Value:  domain.AnchorOutput{TxID: "0x" + in.ContentHash[:8], ChainID: "test-chain"},
		Origin: s.origin,
	}
}

type deepfakeStub struct {
	out    domain.DeepfakeOutput
	origin domain.Origin
}

func (s deepfakeStub) Invoke(context.Context, domain.Submission) domain.CapabilityResult[domain.DeepfakeOutput] {
	return domain.CapabilityResult[domain.DeepfakeOutput]{Value: s.out, Origin: s.origin}
}

type imageCheckStub struct {
	out    domain.ImageCheckOutput
	origin domain.Origin
}

func (s imageCheckStub) Invoke(context.Context, domain.Submission) domain.CapabilityResult[domain.ImageCheckOutput] {
	return domain.CapabilityResult[domain.ImageCheckOutput]{Value: s.out, Origin: s.origin}
}

type narrationStub struct{}

func (narrationStub) Invoke(_ context.Context, in domain.NarrationInput) domain.CapabilityResult[domain.NarrationOutput] {
	return domain.MockedResult(domain.NarrationOutput{Text: in.Summary, Voice: "none"}, nil)
}

type translationStub struct{}

func (translationStub) Invoke(_ context.Context, in domain.TranslationInput) domain.CapabilityResult[domain.TranslationOutput] {
	return domain.MockedResult(domain.TranslationOutput{Text: in.Text, Language: in.Target}, nil)
}

type testEnv struct {
	gw      Gateways
	records *recordmem.ProofRecordRepository
	reports *recordmem.VerificationReportRepository
	tr      *transcriptionStub
	ana     *analysisStub
}

func newTestEnv() *testEnv {
	tr := &transcriptionStub{}
	ana := &analysisStub{out: domain.AnalysisOutput{Credibility: 85, Summary: "credible"}, origin: domain.OriginReal}
	return &testEnv{
		gw: Gateways{
			Moderation:    modStub{out: domain.ModerationOutput{Action: domain.ModerationAllow}, origin: domain.OriginReal},
			Hashing:       hashStub{},
			Transcription: tr,
			Analysis:      ana,
			Storage:       storageStub{origin: domain.OriginReal},
			Anchor:        anchorStub{origin: domain.OriginReal},
			Deepfake:      deepfakeStub{out: domain.DeepfakeOutput{ManipulationConfidence: 10}, origin: domain.OriginReal},
			ImageCheck:    imageCheckStub{out: domain.ImageCheckOutput{Authenticity: 90}, origin: domain.OriginReal},
			Narration:     narrationStub{},
			Translation:   translationStub{},
		},
		records: recordmem.NewProofRecordRepository(),
		reports: recordmem.NewVerificationReportRepository(),
		tr:      tr,
		ana:     ana,
	}
}

func (e *testEnv) orchestrator() *Orchestrator {
	return NewOrchestrator(e.gw, e.records, e.reports, nil, nil, "es", zerolog.Nop())
}

func imageSubmission(id string) domain.Submission {
	return domain.Submission{
		ID:          id,
		Payload:     []byte("evidence bytes"),
		MediaKind:   domain.MediaImage,
		Submitter:   "reporter-1",
		SubmittedAt: time.Now().UTC(),
	}
}

func TestProcessCompletesAndPersists(t *testing.T) {
	env := newTestEnv()
	orc := env.orchestrator()

	outcome, err := orc.Process(context.Background(), imageSubmission("sub-1"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != domain.PipelineCompleted {
		t.Fatalf("expected completed, got %s (%s)", outcome.Status, outcome.FailureCode)
	}
	if !outcome.Terminal() {
		t.Fatal("completed outcome must be terminal")
	}

	record, err := env.records.FindBySubmission(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if record.StorageOrigin != domain.OriginReal || record.AnchorOrigin != domain.OriginReal {
		t.Fatalf("unexpected origins in record: %+v", record)
	}
	if record.Status != domain.ProofStatusCompleted {
		t.Fatalf("unexpected record status %s", record.Status)
	}

	report, err := env.reports.FindBySubmission(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	// 0.45*85 + 0.25*90 + 0.20*90 + 0.10*100 = 88.75
	if report.TrustScore != 89 {
		t.Fatalf("expected trust score 89, got %d", report.TrustScore)
	}
	if report.Status != domain.VerificationVerified {
		t.Fatalf("expected verified, got %s", report.Status)
	}
	if report.Narration == nil || report.Translation == nil {
		t.Fatal("enrichment must decorate the stored report")
	}
	if len(report.MockedStages) != 0 {
		t.Fatalf("fully real run must not list mocked stages: %v", report.MockedStages)
	}
}

func TestProcessBlockHaltsWithoutRecord(t *testing.T) {
	env := newTestEnv()
	env.gw.Moderation = modStub{
		out:    domain.ModerationOutput{Action: domain.ModerationBlock, Reason: "prohibited"},
		origin: domain.OriginReal,
	}
	orc := env.orchestrator()

	outcome, err := orc.Process(context.Background(), imageSubmission("sub-2"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != domain.PipelineFailed || outcome.FailureCode != domain.FailurePolicyViolation {
		t.Fatalf("expected policy violation failure, got %+v", outcome)
	}
	if !outcome.Terminal() {
		t.Fatal("policy violations are terminal")
	}
	if _, err := env.records.FindBySubmission(context.Background(), "sub-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("blocked submissions must not produce a proof record")
	}
	if _, err := env.reports.FindBySubmission(context.Background(), "sub-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("blocked submissions must not produce a report")
	}
}

func TestProcessReviewFlagsReport(t *testing.T) {
	env := newTestEnv()
	env.gw.Moderation = modStub{
		out:    domain.ModerationOutput{Action: domain.ModerationReview, Categories: []string{"violence"}},
		origin: domain.OriginReal,
	}
	orc := env.orchestrator()

	outcome, err := orc.Process(context.Background(), imageSubmission("sub-3"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != domain.PipelineCompleted {
		t.Fatalf("review must not halt the pipeline, got %s", outcome.Status)
	}
	if outcome.Report.Status != domain.VerificationFlagged {
		t.Fatalf("expected flagged regardless of score, got %s", outcome.Report.Status)
	}
}

func TestProcessMockedStorageKeepsReportPending(t *testing.T) {
	env := newTestEnv()
	env.gw.Storage = storageStub{origin: domain.OriginMocked}
	orc := env.orchestrator()

	outcome, err := orc.Process(context.Background(), imageSubmission("sub-4"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != domain.PipelineCompleted {
		t.Fatalf("mocked storage must not fail the run, got %s", outcome.Status)
	}
	if outcome.Record.StorageOrigin != domain.OriginMocked {
		t.Fatal("record must mark the storage reference as mocked")
	}
	report := outcome.Report
	if report.Status != domain.VerificationPending {
		t.Fatalf("mocked required capability must keep status pending, got %s", report.Status)
	}
	found := false
	for _, stage := range report.MockedStages {
		if stage == domain.StageStorageUpload {
			found = true
		}
	}
	if !found {
		t.Fatalf("mocked stages must list storage_upload: %v", report.MockedStages)
	}
	// Score still comes from the remaining real sub-scores.
	if report.TrustScore == 0 {
		t.Fatal("real sub-scores must still contribute to the trust score")
	}
}

func TestProcessSkipsTranscriptionForImages(t *testing.T) {
	env := newTestEnv()
	orc := env.orchestrator()

	if _, err := orc.Process(context.Background(), imageSubmission("sub-5")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if env.tr.wasCalled() {
		t.Fatal("image submissions must skip transcription")
	}

	video := imageSubmission("sub-6")
	video.MediaKind = domain.MediaVideo
	if _, err := orc.Process(context.Background(), video); err != nil {
		t.Fatalf("process video: %v", err)
	}
	if !env.tr.wasCalled() {
		t.Fatal("video submissions must be transcribed")
	}
}

func TestProcessReplayReusesIdentifiers(t *testing.T) {
	env := newTestEnv()
	orc := env.orchestrator()
	sub := imageSubmission("sub-7")

	first, err := orc.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := orc.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.Record.ID != second.Record.ID {
		t.Fatalf("replay produced a new record id: %s vs %s", first.Record.ID, second.Record.ID)
	}
	if !first.Record.CreatedAt.Equal(second.Record.CreatedAt) {
		t.Fatal("replay must keep the original record timestamp")
	}
	if first.Report.ID != second.Report.ID {
		t.Fatalf("replay produced a new report id: %s vs %s", first.Report.ID, second.Report.ID)
	}
	if first.Record.ContentHash != second.Record.ContentHash {
		t.Fatal("content hash must be stable across replays")
	}
}

func TestProcessRejectsConcurrentRun(t *testing.T) {
	env := newTestEnv()
	env.ana.release = make(chan struct{})
	env.ana.entered = make(chan struct{})
	orc := env.orchestrator()
	sub := imageSubmission("sub-8")

	done := make(chan error, 1)
	go func() {
		_, err := orc.Process(context.Background(), sub)
		done <- err
	}()
	// The first run is parked inside the analysis stage.
	<-env.ana.entered

	if _, err := orc.Process(context.Background(), sub); !errors.Is(err, domain.ErrPipelineBusy) {
		t.Fatalf("expected ErrPipelineBusy for duplicate run, got %v", err)
	}
	close(env.ana.release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Once released, the submission can be processed again.
	if _, err := orc.Process(context.Background(), sub); err != nil {
		t.Fatalf("replay after release: %v", err)
	}
}

func TestProcessCancelledContextIsNotTerminal(t *testing.T) {
	env := newTestEnv()
	orc := env.orchestrator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := orc.Process(ctx, imageSubmission("sub-9"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Status != domain.PipelineFailed || outcome.FailureCode != domain.FailureCancelled {
		t.Fatalf("expected cancelled failure, got %+v", outcome)
	}
	if outcome.Terminal() {
		t.Fatal("cancelled runs must stay retryable")
	}
}

func TestProcessRejectsInvalidSubmission(t *testing.T) {
	env := newTestEnv()
	orc := env.orchestrator()

	_, err := orc.Process(context.Background(), domain.Submission{ID: "sub-10"})
	if !errors.Is(err, domain.ErrSubmissionInvalid) {
		t.Fatalf("expected ErrSubmissionInvalid, got %v", err)
	}
}

func TestProgressEventsFollowStageOrder(t *testing.T) {
	env := newTestEnv()
	bus := NewProgressBus()
	events, cancel := bus.Subscribe(64)
	defer cancel()
	orc := NewOrchestrator(env.gw, env.records, env.reports, bus, nil, "es", zerolog.Nop())

	if _, err := orc.Process(context.Background(), imageSubmission("sub-11")); err != nil {
		t.Fatalf("process: %v", err)
	}

	var seen []domain.Stage
	for len(events) > 0 {
		ev := <-events
		if ev.State == domain.StageCompleted || ev.State == domain.StageSkipped {
			seen = append(seen, ev.Stage)
		}
	}
	want := domain.Stages()
	if len(seen) != len(want) {
		t.Fatalf("expected %d stage completions, got %d (%v)", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("stage %d out of order: got %s want %s", i, seen[i], want[i])
		}
	}
}
