package domain

import (
	"fmt"
	"time"
)

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaAudio    MediaKind = "audio"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaImage, MediaAudio, MediaVideo, MediaDocument:
		return true
	}
	return false
}

// RequiresTranscription reports whether the pipeline runs the transcription
// stage for this kind. Image and document submissions skip it.
func (k MediaKind) RequiresTranscription() bool {
	return k == MediaAudio || k == MediaVideo
}

// EnrichmentMetadata is optional submitter-supplied context. It feeds
// moderation scanning and analysis keywords but is never required.
type EnrichmentMetadata struct {
	Location      string `json:"location,omitempty"`
	Weather       string `json:"weather,omitempty"`
	CaptureMethod string `json:"capture_method,omitempty"`
}

type Submission struct {
	ID          string              `json:"id"`
	Payload     []byte              `json:"payload"`
	MediaKind   MediaKind           `json:"media_kind"`
	Submitter   string              `json:"submitter"`
	Metadata    *EnrichmentMetadata `json:"metadata,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

func (s Submission) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrSubmissionInvalid)
	}
	if len(s.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrSubmissionInvalid)
	}
	if !s.MediaKind.Valid() {
		return fmt.Errorf("%w: unknown media kind %q", ErrSubmissionInvalid, s.MediaKind)
	}
	if s.Submitter == "" {
		return fmt.Errorf("%w: missing submitter", ErrSubmissionInvalid)
	}
	return nil
}
