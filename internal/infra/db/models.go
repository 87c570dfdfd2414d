package db

import "time"

type ProofRecordModel struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	SubmissionID     string    `gorm:"uniqueIndex;not null"`
	ContentHash      string    `gorm:"index;not null"`
	StorageReference string    `gorm:"not null"`
	StorageOrigin    string    `gorm:"not null"`
	AnchorReference  string    `gorm:"not null"`
	AnchorOrigin     string    `gorm:"not null"`
	Status           string    `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
}

func (ProofRecordModel) TableName() string { return "proof_records" }

// VerificationReportModel stores the scalar columns queried by the API and
// the full report document as jsonb.
type VerificationReportModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	SubmissionID string    `gorm:"uniqueIndex;not null"`
	TrustScore   int       `gorm:"not null"`
	Status       string    `gorm:"index;not null"`
	ReportJSON   []byte    `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (VerificationReportModel) TableName() string { return "verification_reports" }
