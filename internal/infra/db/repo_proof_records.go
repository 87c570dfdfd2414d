package db

import (
	"context"
	"errors"
	"time"

	"veritas/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProofRecordRepository struct {
	db *gorm.DB
}

func NewProofRecordRepository(db *gorm.DB) *ProofRecordRepository {
	return &ProofRecordRepository{db: db}
}

func (r *ProofRecordRepository) Save(ctx context.Context, record domain.ProofRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if record.ID == "" || record.SubmissionID == "" {
		return errors.New("record id and submission_id are required")
	}
	if record.ContentHash == "" {
		return errors.New("record content_hash is required")
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := ProofRecordModel{
		ID:               record.ID,
		SubmissionID:     record.SubmissionID,
		ContentHash:      record.ContentHash,
		StorageReference: record.StorageReference,
		StorageOrigin:    string(record.StorageOrigin),
		AnchorReference:  record.AnchorReference,
		AnchorOrigin:     string(record.AnchorOrigin),
		Status:           record.Status,
		CreatedAt:        createdAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

func (r *ProofRecordRepository) FindBySubmission(ctx context.Context, submissionID string) (*domain.ProofRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if submissionID == "" {
		return nil, errors.New("submission_id is required")
	}

	var model ProofRecordModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	record := domain.ProofRecord{
		ID:               model.ID,
		SubmissionID:     model.SubmissionID,
		ContentHash:      model.ContentHash,
		StorageReference: model.StorageReference,
		StorageOrigin:    domain.Origin(model.StorageOrigin),
		AnchorReference:  model.AnchorReference,
		AnchorOrigin:     domain.Origin(model.AnchorOrigin),
		Status:           model.Status,
		CreatedAt:        model.CreatedAt,
	}
	return &record, nil
}
