package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"mateometeo/internal/modules/weather/archive"
	"mateometeo/internal/modules/weather/types"
)

//go:embed sql/get-months.sql
var getMonthsSQL string

//go:embed sql/get-month-samples.sql
var getMonthSamplesSQL string

//go:embed sql/get-samples.sql
var getSamplesSQL string

//go:embed sql/count-samples.sql
var countSamplesSQL string

//go:embed sql/upsert-sample.sql
var upsertSampleSQL string

//go:embed sql/upsert-import.sql
var upsertImportSQL string

// Stats describes what the store holds.
type Stats struct {
	Samples int64     `json:"samples"`
	First   time.Time `json:"first"`
	Last    time.Time `json:"last"`
}

type SampleRepository interface {
	Months(ctx context.Context) ([]archive.Month, error)
	GetMonth(ctx context.Context, m archive.Month) ([]types.Sample, error)
	GetSamples(ctx context.Context, from, to time.Time) ([]types.Sample, error)
	InsertSamples(ctx context.Context, m archive.Month, source string, samples []types.Sample) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) SampleRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Months(ctx context.Context) ([]archive.Month, error) {
	rows, err := r.db.QueryContext(ctx, getMonthsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "months")

	var out []archive.Month
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		m, err := archive.ParseMonth(s)
		if err != nil {
			return nil, fmt.Errorf("stored month: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetMonth(ctx context.Context, m archive.Month) ([]types.Sample, error) {
	rows, err := r.db.QueryContext(ctx, getMonthSamplesSQL, m.String())
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "month samples")
	return scanSamples(rows)
}

// GetSamples returns samples with from <= t <= to in time order.
func (r *repositoryImpl) GetSamples(ctx context.Context, from, to time.Time) ([]types.Sample, error) {
	rows, err := r.db.QueryContext(ctx, getSamplesSQL, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "samples")
	return scanSamples(rows)
}

// InsertSamples upserts samples for month m in one transaction and records
// the import. Samples failing validation are skipped; the number written is
// returned.
func (r *repositoryImpl) InsertSamples(ctx context.Context, m archive.Month, source string, samples []types.Sample) (n int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback insert samples", "month", m.String(), "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertSampleSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("close upsert statement", "error", err)
		}
	}()

	month := m.String()
	for _, s := range samples {
		if vErr := s.Validate(); vErr != nil {
			slog.Warn("skip invalid sample", "month", month, "t", s.Timestamp, "error", vErr)
			continue
		}
		if _, err = stmt.ExecContext(ctx, s.Timestamp, month,
			s.Temperature, s.Humidity, s.Pressure,
			s.WindSpeed, s.WindGust, s.WindDirection,
			s.RainCumulative, s.RainRate, s.SolarRadiation, s.UVIndex,
		); err != nil {
			return 0, fmt.Errorf("upsert sample %d: %w", s.Timestamp, err)
		}
		n++
	}

	if _, err = tx.ExecContext(ctx, upsertImportSQL, month, source, n); err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (r *repositoryImpl) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var first, last int64
	if err := r.db.QueryRowContext(ctx, countSamplesSQL).Scan(&st.Samples, &first, &last); err != nil {
		return Stats{}, err
	}
	if st.Samples > 0 {
		st.First = time.UnixMilli(first).UTC()
		st.Last = time.UnixMilli(last).UTC()
	}
	return st, nil
}

func scanSamples(rows *sql.Rows) ([]types.Sample, error) {
	out := []types.Sample{}
	for rows.Next() {
		var s types.Sample
		if err := rows.Scan(&s.Timestamp,
			&s.Temperature, &s.Humidity, &s.Pressure,
			&s.WindSpeed, &s.WindGust, &s.WindDirection,
			&s.RainCumulative, &s.RainRate, &s.SolarRadiation, &s.UVIndex,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "query", what, "error", err)
	}
}
