package usecase

import (
	"context"

	"veritas/internal/domain"
)

// Gateway interfaces are defined here, on the consumer side; the concrete
// adapters live in internal/infra/capability.

type ModerationGateway interface {
	Available() bool
	Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.ModerationOutput]
}

type HashingGateway interface {
	Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.HashOutput]
}

type TranscriptionGateway interface {
	Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.TranscriptionOutput]
}

type AnalysisGateway interface {
	Invoke(ctx context.Context, input domain.AnalysisInput) domain.CapabilityResult[domain.AnalysisOutput]
}

type StorageGateway interface {
	Invoke(ctx context.Context, input domain.StorageUploadInput) domain.CapabilityResult[domain.StorageOutput]
}

type AnchorGateway interface {
	Invoke(ctx context.Context, input domain.AnchorRequest) domain.CapabilityResult[domain.AnchorOutput]
}

type DeepfakeGateway interface {
	Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.DeepfakeOutput]
}

type ImageCheckGateway interface {
	Invoke(ctx context.Context, sub domain.Submission) domain.CapabilityResult[domain.ImageCheckOutput]
}

type NarrationGateway interface {
	Invoke(ctx context.Context, input domain.NarrationInput) domain.CapabilityResult[domain.NarrationOutput]
}

type TranslationGateway interface {
	Invoke(ctx context.Context, input domain.TranslationInput) domain.CapabilityResult[domain.TranslationOutput]
}

// Gateways bundles every capability the orchestrator drives. All fields
// must be non-nil.
type Gateways struct {
	Moderation    ModerationGateway
	Hashing       HashingGateway
	Transcription TranscriptionGateway
	Analysis      AnalysisGateway
	Storage       StorageGateway
	Anchor        AnchorGateway
	Deepfake      DeepfakeGateway
	ImageCheck    ImageCheckGateway
	Narration     NarrationGateway
	Translation   TranslationGateway
}

// StageObserver receives pipeline telemetry. Implementations must not
// block; the orchestrator calls them inline.
type StageObserver interface {
	StageObserved(stage domain.Stage, state domain.StageState, origin domain.Origin)
	PipelineFinished(status domain.PipelineStatus, failureCode string)
}
