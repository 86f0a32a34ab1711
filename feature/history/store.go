package history

import (
	"context"
	"fmt"

	"position-tally/core/database"

	"gorm.io/gorm"
)

// Store persists reconciliation runs.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the history tables and checks the run table carries every
// column Save writes.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Run{}, &Break{}); err != nil {
		return fmt.Errorf("failed to migrate history tables: %w", err)
	}
	missing, err := s.MissingColumns(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %v", Run{}.TableName(), missing)
	}
	return nil
}

// MissingColumns returns the RunColumns absent from the run table.
func (s *Store) MissingColumns(ctx context.Context) ([]string, error) {
	return database.MissingColumns(s.db.WithContext(ctx), Run{}.TableName(), RunColumns)
}

// Save inserts run and its breaks in one transaction.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs without their breaks.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its breaks. It returns gorm.ErrRecordNotFound for an unknown id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Preload("Breaks").First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
