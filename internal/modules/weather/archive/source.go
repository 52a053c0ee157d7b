// Package archive loads station samples from the monthly archive: one JSON
// array of samples per YYYY_MM.json file plus a manifest.json listing the
// files that exist.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"mateometeo/internal/modules/weather/types"
)

const ManifestFile = "manifest.json"

var ErrMonthNotFound = errors.New("month not found in archive")

// Source is anything that can list and load monthly sample files.
type Source interface {
	Name() string
	Months(ctx context.Context) ([]Month, error)
	Load(ctx context.Context, m Month) ([]types.Sample, error)
}

// Manifest is the on-disk manifest.json document.
type Manifest struct {
	AvailableFiles []string `json:"availableFiles"`
}

// Months parses the file names, skipping any that do not look like YYYY_MM.json.
func (m Manifest) Months() []Month {
	out := make([]Month, 0, len(m.AvailableFiles))
	for _, name := range m.AvailableFiles {
		month, err := ParseMonthFile(name)
		if err != nil {
			slog.Warn("skip manifest entry", "file", name, "error", err)
			continue
		}
		out = append(out, month)
	}
	return sortMonths(out)
}

func NewManifest(months []Month) Manifest {
	sorted := sortMonths(slices.Clone(months))
	files := make([]string, 0, len(sorted))
	for _, m := range sorted {
		files = append(files, m.FileName())
	}
	return Manifest{AvailableFiles: files}
}

func decodeManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// DecodeSamples reads one monthly file. Samples failing validation are dropped
// with a warning rather than failing the whole month.
func DecodeSamples(r io.Reader) ([]types.Sample, error) {
	var raw []types.Sample
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}
	out := raw[:0]
	for _, s := range raw {
		if err := s.Validate(); err != nil {
			slog.Warn("drop invalid sample", "t", s.Timestamp, "error", err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
