package domain

import "time"

// Origin marks whether a capability output came from the real backing
// dependency or from deterministic degraded synthesis.
type Origin string

const (
	OriginReal   Origin = "real"
	OriginMocked Origin = "mocked"
)

// CapabilityResult is the uniform return type of every gateway call.
// Mocked results are schema-valid so downstream stages never special-case
// them; Err records the real-call failure that forced the fallback, if any.
type CapabilityResult[T any] struct {
	Value  T
	Origin Origin
	Err    error
}

func RealResult[T any](value T) CapabilityResult[T] {
	return CapabilityResult[T]{Value: value, Origin: OriginReal}
}

func MockedResult[T any](value T, cause error) CapabilityResult[T] {
	return CapabilityResult[T]{Value: value, Origin: OriginMocked, Err: cause}
}

const (
	CapabilityModeration    = "moderation"
	CapabilityHashing       = "hashing"
	CapabilityTranscription = "transcription"
	CapabilityAnalysis      = "analysis"
	CapabilityStorage       = "storage"
	CapabilityAnchor        = "anchor"
	CapabilityDeepfake      = "deepfake"
	CapabilityImageCheck    = "image_verification"
	CapabilityNarration     = "narration"
	CapabilityTranslation   = "translation"
)

const (
	ModerationAllow  = "allow"
	ModerationReview = "review"
	ModerationBlock  = "block"
)

type ModerationOutput struct {
	Action     string   `json:"action"`
	Categories []string `json:"categories,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

type HashOutput struct {
	Alg string `json:"alg"`
	Hex string `json:"hex"`
}

type TranscriptionOutput struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type AnalysisOutput struct {
	// Credibility is a 0-100 sub-score feeding the trust score.
	Credibility int      `json:"credibility"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords,omitempty"`
}

type StorageOutput struct {
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
	SizeBytes int    `json:"size_bytes"`
}

type AnchorOutput struct {
	TxID        string    `json:"tx_id"`
	ChainID     string    `json:"chain_id"`
	ExplorerURL string    `json:"explorer_url,omitempty"`
	AnchoredAt  time.Time `json:"anchored_at"`
}

type DeepfakeOutput struct {
	// ManipulationConfidence is 0-100; higher means more likely manipulated.
	ManipulationConfidence int    `json:"manipulation_confidence"`
	Model                  string `json:"model,omitempty"`
}

type ImageCheckOutput struct {
	// Authenticity is 0-100; higher means more likely authentic.
	Authenticity int      `json:"authenticity"`
	Notes        []string `json:"notes,omitempty"`
}

// Gateway inputs for calls that combine outputs of earlier stages.

type AnalysisInput struct {
	Submission Submission `json:"submission"`
	Transcript string     `json:"transcript,omitempty"`
}

type StorageUploadInput struct {
	SubmissionID string    `json:"submission_id"`
	ContentHash  string    `json:"content_hash"`
	MediaKind    MediaKind `json:"media_kind"`
	Payload      []byte    `json:"payload"`
}

type AnchorRequest struct {
	SubmissionID     string `json:"submission_id"`
	ContentHash      string `json:"content_hash"`
	StorageReference string `json:"storage_reference"`
}

type NarrationInput struct {
	SubmissionID string `json:"submission_id"`
	Summary      string `json:"summary"`
}

type TranslationInput struct {
	SubmissionID string `json:"submission_id"`
	Text         string `json:"text"`
	Target       string `json:"target"`
}

type NarrationOutput struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

type TranslationOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
