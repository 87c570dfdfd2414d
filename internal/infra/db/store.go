package db

import (
	"errors"
	"fmt"

	"veritas/internal/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("database unavailable")

type Store struct {
	DB *gorm.DB
}

// NewStore connects to postgres when a DSN is configured. Without one the
// service runs with in-memory repositories instead.
func NewStore(cfg config.Config, log zerolog.Logger) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Info().Msg("POSTGRES_DSN not set; running without a database")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: gdb}, nil
}

func (s *Store) Available() bool { return s != nil && s.DB != nil }

// Migrate creates the proof record and report tables.
func (s *Store) Migrate() error {
	if !s.Available() {
		return errDBUnavailable
	}
	return s.DB.AutoMigrate(&ProofRecordModel{}, &VerificationReportModel{})
}
