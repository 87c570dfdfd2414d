// Package recordmem holds in-memory repositories used when no database is
// configured and by tests.
package recordmem

import (
	"context"
	"sync"

	"veritas/internal/domain"
)

type ProofRecordRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.ProofRecord
	bySubID map[string]string
}

func NewProofRecordRepository() *ProofRecordRepository {
	return &ProofRecordRepository{
		byID:    make(map[string]domain.ProofRecord),
		bySubID: make(map[string]string),
	}
}

func (r *ProofRecordRepository) Save(_ context.Context, record domain.ProofRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.bySubID[record.SubmissionID]; ok && prev != record.ID {
		delete(r.byID, prev)
	}
	r.byID[record.ID] = record
	r.bySubID[record.SubmissionID] = record.ID
	return nil
}

func (r *ProofRecordRepository) FindBySubmission(_ context.Context, submissionID string) (*domain.ProofRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySubID[submissionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	record := r.byID[id]
	return &record, nil
}

type VerificationReportRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.VerificationReport
	bySubID map[string]string
}

func NewVerificationReportRepository() *VerificationReportRepository {
	return &VerificationReportRepository{
		byID:    make(map[string]domain.VerificationReport),
		bySubID: make(map[string]string),
	}
}

func (r *VerificationReportRepository) Save(_ context.Context, report domain.VerificationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.bySubID[report.SubmissionID]; ok && prev != report.ID {
		delete(r.byID, prev)
	}
	r.byID[report.ID] = report
	r.bySubID[report.SubmissionID] = report.ID
	return nil
}

func (r *VerificationReportRepository) FindByID(_ context.Context, id string) (*domain.VerificationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

func (r *VerificationReportRepository) FindBySubmission(_ context.Context, submissionID string) (*domain.VerificationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySubID[submissionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	report := r.byID[id]
	return &report, nil
}
