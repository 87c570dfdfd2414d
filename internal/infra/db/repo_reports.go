package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veritas/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationReportRepository struct {
	db *gorm.DB
}

func NewVerificationReportRepository(db *gorm.DB) *VerificationReportRepository {
	return &VerificationReportRepository{db: db}
}

func (r *VerificationReportRepository) Save(ctx context.Context, report domain.VerificationReport) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if report.ID == "" || report.SubmissionID == "" {
		return errors.New("report id and submission_id are required")
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := VerificationReportModel{
		ID:           report.ID,
		SubmissionID: report.SubmissionID,
		TrustScore:   report.TrustScore,
		Status:       string(report.Status),
		ReportJSON:   raw,
		CreatedAt:    createdAt,
		UpdatedAt:    time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

func (r *VerificationReportRepository) FindByID(ctx context.Context, id string) (*domain.VerificationReport, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if id == "" {
		return nil, errors.New("report id is required")
	}
	var model VerificationReportModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	return decodeReport(model, err)
}

func (r *VerificationReportRepository) FindBySubmission(ctx context.Context, submissionID string) (*domain.VerificationReport, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if submissionID == "" {
		return nil, errors.New("submission_id is required")
	}
	var model VerificationReportModel
	err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&model).Error
	return decodeReport(model, err)
}

func decodeReport(model VerificationReportModel, err error) (*domain.VerificationReport, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var report domain.VerificationReport
	if err := json.Unmarshal(model.ReportJSON, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}
