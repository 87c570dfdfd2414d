package domain

import (
	"context"
	"time"
)

const (
	ProofStatusCompleted = "completed"
	ProofStatusFailed    = "failed"
)

// ProofRecord exists if and only if its submission completed the hashing,
// storage upload and anchor stages, successfully or in mocked form.
type ProofRecord struct {
	ID               string    `json:"id"`
	SubmissionID     string    `json:"submission_id"`
	ContentHash      string    `json:"content_hash"`
	StorageReference string    `json:"storage_reference"`
	StorageOrigin    Origin    `json:"storage_origin"`
	AnchorReference  string    `json:"anchor_reference"`
	AnchorOrigin     Origin    `json:"anchor_origin"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type ProofRecordRepository interface {
	Save(ctx context.Context, record ProofRecord) error
	FindBySubmission(ctx context.Context, submissionID string) (*ProofRecord, error)
}
