package domain

import "time"

type Stage string

const (
	StageModeration    Stage = "moderation"
	StageHashing       Stage = "hashing"
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StageStorageUpload Stage = "storage_upload"
	StageAnchor        Stage = "anchor"
	StageSynthesis     Stage = "synthesis"
	StageEnrichment    Stage = "enrichment"
)

// Stages returns the fixed pipeline order. The orchestrator never reorders
// or skips stages except via the documented conditional and soft rules.
func Stages() []Stage {
	return []Stage{
		StageModeration,
		StageHashing,
		StageTranscription,
		StageAnalysis,
		StageStorageUpload,
		StageAnchor,
		StageSynthesis,
		StageEnrichment,
	}
}

type StageState string

const (
	StageStarted   StageState = "started"
	StageCompleted StageState = "completed"
	StageSkipped   StageState = "skipped"
	StageFailed    StageState = "failed"
)

type ProgressEvent struct {
	SubmissionID string     `json:"submission_id"`
	Stage        Stage      `json:"stage"`
	State        StageState `json:"state"`
	At           time.Time  `json:"at"`
}

// ProgressPublisher receives fire-and-forget stage notifications. Pipeline
// correctness never depends on a subscriber being present.
type ProgressPublisher interface {
	Publish(event ProgressEvent)
}

type PipelineStatus string

const (
	PipelineCompleted PipelineStatus = "completed"
	PipelineFailed    PipelineStatus = "failed"
)

const (
	FailurePolicyViolation = "POLICY_VIOLATION"
	FailureCancelled       = "CANCELLED"
)

type PipelineOutcome struct {
	SubmissionID string
	Status       PipelineStatus
	FailureCode  string
	Record       *ProofRecord
	Report       *VerificationReport
}

// Terminal reports whether the outcome must not be retried by the offline
// queue. Completed runs and policy violations are terminal; everything else
// stays queued for replay.
func (o PipelineOutcome) Terminal() bool {
	if o.Status == PipelineCompleted {
		return true
	}
	return o.FailureCode == FailurePolicyViolation
}
