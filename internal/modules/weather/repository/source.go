package repository

import (
	"context"
	"fmt"

	"mateometeo/internal/modules/weather/archive"
	"mateometeo/internal/modules/weather/types"
)

// SQLiteSource serves the archive from the sample store, so an imported
// database can stand in for the directory of monthly files.
type SQLiteSource struct {
	repo SampleRepository
}

func NewSQLiteSource(repo SampleRepository) *SQLiteSource {
	return &SQLiteSource{repo: repo}
}

func (s *SQLiteSource) Name() string {
	return "sqlite"
}

func (s *SQLiteSource) Months(ctx context.Context) ([]archive.Month, error) {
	return s.repo.Months(ctx)
}

func (s *SQLiteSource) Load(ctx context.Context, m archive.Month) ([]types.Sample, error) {
	samples, err := s.repo.GetMonth(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", m, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s", archive.ErrMonthNotFound, m)
	}
	return samples, nil
}

var _ archive.Source = (*SQLiteSource)(nil)
