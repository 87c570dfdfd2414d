package usecase

import (
	"context"
	"sync"
	"time"

	"veritas/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Orchestrator drives a submission through the fixed stage sequence. At
// most one run per submission id is active at a time; concurrent callers
// get ErrPipelineBusy.
type Orchestrator struct {
	gw              Gateways
	records         domain.ProofRecordRepository
	reports         domain.VerificationReportRepository
	progress        domain.ProgressPublisher
	observer        StageObserver
	translateTarget string
	log             zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewOrchestrator(
	gw Gateways,
	records domain.ProofRecordRepository,
	reports domain.VerificationReportRepository,
	progress domain.ProgressPublisher,
	observer StageObserver,
	translateTarget string,
	log zerolog.Logger,
) *Orchestrator {
	if translateTarget == "" {
		translateTarget = "es"
	}
	return &Orchestrator{
		gw:              gw,
		records:         records,
		reports:         reports,
		progress:        progress,
		observer:        observer,
		translateTarget: translateTarget,
		log:             log.With().Str("component", "orchestrator").Logger(),
		inflight:        make(map[string]struct{}),
	}
}

// Process runs the full pipeline for one submission. A moderation block is
// reported through the outcome, not the error: the error return covers
// only invalid input and concurrent duplicate runs.
func (o *Orchestrator) Process(ctx context.Context, sub domain.Submission) (domain.PipelineOutcome, error) {
	if err := sub.Validate(); err != nil {
		return domain.PipelineOutcome{SubmissionID: sub.ID}, err
	}
	if !o.acquire(sub.ID) {
		return domain.PipelineOutcome{SubmissionID: sub.ID}, domain.ErrPipelineBusy
	}
	defer o.release(sub.ID)

	outcome := o.run(ctx, sub)
	o.finished(outcome)
	return outcome, nil
}

func (o *Orchestrator) acquire(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[id]; busy {
		return false
	}
	o.inflight[id] = struct{}{}
	return true
}

func (o *Orchestrator) release(id string) {
	o.mu.Lock()
	delete(o.inflight, id)
	o.mu.Unlock()
}

func (o *Orchestrator) run(ctx context.Context, sub domain.Submission) domain.PipelineOutcome {
	var results []domain.StageResult

	record := func(res domain.StageResult) {
		results = append(results, res)
		o.observe(res.Stage, res.State, res.Origin)
	}

	cancelled := func() domain.PipelineOutcome {
		return domain.PipelineOutcome{
			SubmissionID: sub.ID,
			Status:       domain.PipelineFailed,
			FailureCode:  domain.FailureCancelled,
		}
	}

	// Moderation. A block is authoritative and halts everything: no proof
	// record, no report.
	if ctx.Err() != nil {
		return cancelled()
	}
	o.emit(sub.ID, domain.StageModeration, domain.StageStarted)
	modRes := o.gw.Moderation.Invoke(ctx, sub)
	mod := modRes.Value
	if mod.Action == domain.ModerationBlock {
		o.emit(sub.ID, domain.StageModeration, domain.StageFailed)
		record(domain.StageResult{
			Stage:      domain.StageModeration,
			Capability: domain.CapabilityModeration,
			State:      domain.StageFailed,
			Origin:     modRes.Origin,
			Summary:    mod.Reason,
			Flags:      mod.Categories,
		})
		o.log.Warn().Str("submission_id", sub.ID).Strs("categories", mod.Categories).Msg("submission blocked by moderation")
		return domain.PipelineOutcome{
			SubmissionID: sub.ID,
			Status:       domain.PipelineFailed,
			FailureCode:  domain.FailurePolicyViolation,
		}
	}
	var flags []string
	if mod.Action == domain.ModerationReview {
		flags = append(flags, "moderation:review")
		flags = append(flags, mod.Categories...)
	}
	record(domain.StageResult{
		Stage:      domain.StageModeration,
		Capability: domain.CapabilityModeration,
		State:      domain.StageCompleted,
		Origin:     modRes.Origin,
		Summary:    mod.Action,
		Flags:      mod.Categories,
	})
	o.emit(sub.ID, domain.StageModeration, domain.StageCompleted)

	// Hashing is local and infallible.
	if ctx.Err() != nil {
		return cancelled()
	}
	o.emit(sub.ID, domain.StageHashing, domain.StageStarted)
	hashRes := o.gw.Hashing.Invoke(ctx, sub)
	contentHash := hashRes.Value.Hex
	record(domain.StageResult{
		Stage:      domain.StageHashing,
		Capability: domain.CapabilityHashing,
		State:      domain.StageCompleted,
		Origin:     hashRes.Origin,
		Summary:    hashRes.Value.Alg + ":" + contentHash,
	})
	o.emit(sub.ID, domain.StageHashing, domain.StageCompleted)

	// Transcription only applies to audio and video.
	if ctx.Err() != nil {
		return cancelled()
	}
	var transcript string
	if sub.MediaKind.RequiresTranscription() {
		o.emit(sub.ID, domain.StageTranscription, domain.StageStarted)
		trRes := o.gw.Transcription.Invoke(ctx, sub)
		transcript = trRes.Value.Text
		record(domain.StageResult{
			Stage:      domain.StageTranscription,
			Capability: domain.CapabilityTranscription,
			State:      domain.StageCompleted,
			Origin:     trRes.Origin,
			Summary:    trRes.Value.Language,
		})
		o.emit(sub.ID, domain.StageTranscription, domain.StageCompleted)
	} else {
		record(domain.StageResult{
			Stage:   domain.StageTranscription,
			State:   domain.StageSkipped,
			Summary: "not applicable for " + string(sub.MediaKind),
		})
		o.emit(sub.ID, domain.StageTranscription, domain.StageSkipped)
	}

	// Content analysis.
	if ctx.Err() != nil {
		return cancelled()
	}
	o.emit(sub.ID, domain.StageAnalysis, domain.StageStarted)
	anaRes := o.gw.Analysis.Invoke(ctx, domain.AnalysisInput{Submission: sub, Transcript: transcript})
	record(domain.StageResult{
		Stage:      domain.StageAnalysis,
		Capability: domain.CapabilityAnalysis,
		State:      domain.StageCompleted,
		Origin:     anaRes.Origin,
		Summary:    anaRes.Value.Summary,
	})
	o.emit(sub.ID, domain.StageAnalysis, domain.StageCompleted)

	// Storage upload, with forensic checks running alongside since neither
	// needs the other's output.
	if ctx.Err() != nil {
		return cancelled()
	}
	o.emit(sub.ID, domain.StageStorageUpload, domain.StageStarted)
	var (
		wg     sync.WaitGroup
		dfRes  *domain.CapabilityResult[domain.DeepfakeOutput]
		imgRes *domain.CapabilityResult[domain.ImageCheckOutput]
	)
	if sub.MediaKind == domain.MediaImage || sub.MediaKind == domain.MediaVideo {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := o.gw.Deepfake.Invoke(ctx, sub)
			dfRes = &res
		}()
	}
	if sub.MediaKind == domain.MediaImage {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := o.gw.ImageCheck.Invoke(ctx, sub)
			imgRes = &res
		}()
	}
	stoRes := o.gw.Storage.Invoke(ctx, domain.StorageUploadInput{
		SubmissionID: sub.ID,
		ContentHash:  contentHash,
		MediaKind:    sub.MediaKind,
		Payload:      sub.Payload,
	})
	wg.Wait()
	record(domain.StageResult{
		Stage:      domain.StageStorageUpload,
		Capability: domain.CapabilityStorage,
		State:      domain.StageCompleted,
		Origin:     stoRes.Origin,
		Summary:    stoRes.Value.Reference,
	})
	if dfRes != nil {
		record(domain.StageResult{
			Stage:      domain.StageAnalysis,
			Capability: domain.CapabilityDeepfake,
			State:      domain.StageCompleted,
			Origin:     dfRes.Origin,
			Summary:    dfRes.Value.Model,
		})
	}
	if imgRes != nil {
		record(domain.StageResult{
			Stage:      domain.StageAnalysis,
			Capability: domain.CapabilityImageCheck,
			State:      domain.StageCompleted,
			Origin:     imgRes.Origin,
		})
	}
	o.emit(sub.ID, domain.StageStorageUpload, domain.StageCompleted)

	// Anchor.
	if ctx.Err() != nil {
		return cancelled()
	}
	o.emit(sub.ID, domain.StageAnchor, domain.StageStarted)
	ancRes := o.gw.Anchor.Invoke(ctx, domain.AnchorRequest{
		SubmissionID:     sub.ID,
		ContentHash:      contentHash,
		StorageReference: stoRes.Value.Reference,
	})
	record(domain.StageResult{
		Stage:      domain.StageAnchor,
		Capability: domain.CapabilityAnchor,
		State:      domain.StageCompleted,
		Origin:     ancRes.Origin,
		Summary:    ancRes.Value.TxID,
	})
	o.emit(sub.ID, domain.StageAnchor, domain.StageCompleted)

	// Synthesis: assemble the proof record and verification report, reusing
	// identifiers from any earlier run so replays stay idempotent.
	o.emit(sub.ID, domain.StageSynthesis, domain.StageStarted)
	proof := domain.ProofRecord{
		ID:               uuid.NewString(),
		SubmissionID:     sub.ID,
		ContentHash:      contentHash,
		StorageReference: stoRes.Value.Reference,
		StorageOrigin:    stoRes.Origin,
		AnchorReference:  ancRes.Value.TxID,
		AnchorOrigin:     ancRes.Origin,
		Status:           domain.ProofStatusCompleted,
		CreatedAt:        time.Now().UTC(),
	}
	if existing, err := o.records.FindBySubmission(ctx, sub.ID); err == nil && existing != nil {
		proof.ID = existing.ID
		proof.CreatedAt = existing.CreatedAt
	}

	report := AssembleReport(ReportInputs{
		SubmissionID: sub.ID,
		Moderation:   modRes,
		Analysis:     anaRes,
		Deepfake:     dfRes,
		ImageCheck:   imgRes,
		StageResults: results,
		Flags:        flags,
	})
	if existing, err := o.reports.FindBySubmission(ctx, sub.ID); err == nil && existing != nil {
		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
		report.CoSignatures = existing.CoSignatures
	}

	if err := o.records.Save(ctx, proof); err != nil {
		o.log.Error().Err(err).Str("submission_id", sub.ID).Msg("proof record save failed")
	}
	if err := o.reports.Save(ctx, report); err != nil {
		o.log.Error().Err(err).Str("submission_id", sub.ID).Msg("report save failed")
	}
	o.observe(domain.StageSynthesis, domain.StageCompleted, "")
	o.emit(sub.ID, domain.StageSynthesis, domain.StageCompleted)

	// Enrichment decorates the stored report; it never changes score or
	// status and never fails the run.
	o.emit(sub.ID, domain.StageEnrichment, domain.StageStarted)
	narRes := o.gw.Narration.Invoke(ctx, domain.NarrationInput{
		SubmissionID: sub.ID,
		Summary:      anaRes.Value.Summary,
	})
	report.Narration = &narRes.Value
	trlRes := o.gw.Translation.Invoke(ctx, domain.TranslationInput{
		SubmissionID: sub.ID,
		Text:         narRes.Value.Text,
		Target:       o.translateTarget,
	})
	report.Translation = &trlRes.Value
	report.StageResults = append(report.StageResults,
		domain.StageResult{
			Stage:      domain.StageEnrichment,
			Capability: domain.CapabilityNarration,
			State:      domain.StageCompleted,
			Origin:     narRes.Origin,
		},
		domain.StageResult{
			Stage:      domain.StageEnrichment,
			Capability: domain.CapabilityTranslation,
			State:      domain.StageCompleted,
			Origin:     trlRes.Origin,
		},
	)
	o.observe(domain.StageEnrichment, domain.StageCompleted, narRes.Origin)
	if err := o.reports.Save(ctx, report); err != nil {
		o.log.Error().Err(err).Str("submission_id", sub.ID).Msg("report enrichment save failed")
	}
	o.emit(sub.ID, domain.StageEnrichment, domain.StageCompleted)

	return domain.PipelineOutcome{
		SubmissionID: sub.ID,
		Status:       domain.PipelineCompleted,
		Record:       &proof,
		Report:       &report,
	}
}

// emit publishes a progress event. A panicking subscriber must not kill
// the pipeline.
func (o *Orchestrator) emit(id string, stage domain.Stage, state domain.StageState) {
	if o.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.log.Warn().Interface("panic", r).Msg("progress subscriber panicked")
		}
	}()
	o.progress.Publish(domain.ProgressEvent{
		SubmissionID: id,
		Stage:        stage,
		State:        state,
		At:           time.Now().UTC(),
	})
}

func (o *Orchestrator) observe(stage domain.Stage, state domain.StageState, origin domain.Origin) {
	if o.observer != nil {
		o.observer.StageObserved(stage, state, origin)
	}
}

func (o *Orchestrator) finished(outcome domain.PipelineOutcome) {
	if o.observer != nil {
		o.observer.PipelineFinished(outcome.Status, outcome.FailureCode)
	}
}
