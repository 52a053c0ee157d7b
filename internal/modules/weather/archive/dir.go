package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"mateometeo/internal/modules/weather/types"
)

// DirSource reads the archive from a file system, normally a data directory.
type DirSource struct {
	fsys fs.FS
	name string
}

func NewDirSource(dir string) *DirSource {
	return NewFSSource(os.DirFS(dir), "dir:"+dir)
}

func NewFSSource(fsys fs.FS, name string) *DirSource {
	return &DirSource{fsys: fsys, name: name}
}

func (d *DirSource) Name() string {
	return d.name
}

// Months reads manifest.json. Without a manifest the directory listing is used.
func (d *DirSource) Months(ctx context.Context) ([]Month, error) {
	f, err := d.fsys.Open(ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no manifest, scanning archive", "source", d.name)
		return scanMonths(d.fsys)
	}
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close manifest", "error", err)
		}
	}()
	m, err := decodeManifest(f)
	if err != nil {
		return nil, err
	}
	return m.Months(), nil
}

func (d *DirSource) Load(ctx context.Context, m Month) ([]types.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := d.fsys.Open(m.FileName())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMonthNotFound, m)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", m.FileName(), err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close archive file", "file", m.FileName(), "error", err)
		}
	}()
	samples, err := DecodeSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.FileName(), err)
	}
	return samples, nil
}

func scanMonths(fsys fs.FS) ([]Month, error) {
	names, err := fs.Glob(fsys, "*_*.json")
	if err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}
	var months []Month
	for _, name := range names {
		m, err := ParseMonthFile(name)
		if err != nil {
			continue
		}
		months = append(months, m)
	}
	return sortMonths(months), nil
}

// WriteManifest scans dir for YYYY_MM.json files and (re)writes its
// manifest.json. It returns the months listed.
func WriteManifest(dir string) ([]Month, error) {
	months, err := scanMonths(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(NewManifest(months), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, append(body, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return months, nil
}

var _ Source = (*DirSource)(nil)
