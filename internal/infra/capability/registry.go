package capability

import (
	"veritas/internal/config"

	"github.com/rs/zerolog"
)

// Set bundles one gateway instance per capability. It is constructed once
// at startup and handed to the orchestrator; gateways are never looked up
// through ambient globals.
type Set struct {
	Moderation    *ModerationGateway
	Hashing       *HashingGateway
	Transcription *TranscriptionGateway
	Analysis      *AnalysisGateway
	Storage       *StorageGateway
	Anchor        *AnchorGateway
	Deepfake      *DeepfakeGateway
	ImageCheck    *ImageCheckGateway
	Narration     *NarrationGateway
	Translation   *TranslationGateway
}

func NewSet(cfg config.Config, policy ModerationPolicy, log zerolog.Logger) *Set {
	timeout := cfg.CapabilityTimeout()
	return &Set{
		Moderation:    NewModerationGateway(cfg.ModerationURL, cfg.ModerationAPIKey, timeout, policy, log),
		Hashing:       NewHashingGateway(),
		Transcription: NewTranscriptionGateway(cfg.TranscribeURL, cfg.TranscribeAPIKey, timeout, log),
		Analysis:      NewAnalysisGateway(cfg.AnalysisURL, cfg.AnalysisAPIKey, timeout, log),
		Storage:       NewStorageGateway(cfg.StorageURL, cfg.StorageAPIKey, timeout, log),
		Anchor:        NewAnchorGateway(cfg.AnchorRPCURL, cfg.AnchorAPIKey, cfg.AnchorChainID, timeout, log),
		Deepfake:      NewDeepfakeGateway(cfg.DeepfakeURL, cfg.DeepfakeAPIKey, timeout, log),
		ImageCheck:    NewImageCheckGateway(cfg.ImageCheckURL, cfg.ImageCheckAPIKey, timeout, log),
		Narration:     NewNarrationGateway(cfg.NarrationURL, cfg.NarrationAPIKey, timeout, log),
		Translation:   NewTranslationGateway(cfg.TranslateURL, cfg.TranslateAPIKey, timeout, log),
	}
}

// ResetQuotas clears every gateway's circuit breaker.
func (s *Set) ResetQuotas() {
	if s == nil {
		return
	}
	s.Moderation.ResetQuota()
	s.Transcription.ResetQuota()
	s.Analysis.ResetQuota()
	s.Storage.ResetQuota()
	s.Anchor.ResetQuota()
	s.Deepfake.ResetQuota()
	s.ImageCheck.ResetQuota()
	s.Narration.ResetQuota()
	s.Translation.ResetQuota()
}
