package weather

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"mateometeo/internal/config"
	"mateometeo/internal/modules/weather/aggregation"
	"mateometeo/internal/modules/weather/archive"
	"mateometeo/internal/modules/weather/controller"
	"mateometeo/internal/modules/weather/repository"
)

// NewSource builds the archive source selected by cfg.DataSource. db is only
// used, and required, for the sqlite source.
func NewSource(cfg config.Config, db *sql.DB) (archive.Source, error) {
	switch cfg.DataSource {
	case config.SourceDir:
		return archive.NewDirSource(cfg.DataDir), nil
	case config.SourceHTTP:
		return archive.NewHTTPSource(cfg.DataURL, cfg.FetchRPS, cfg.FetchBurst, cfg.FetchTimeout)
	case config.SourceSQLite:
		if db == nil {
			return nil, errors.New("sqlite data source needs a database")
		}
		return repository.NewSQLiteSource(repository.NewRepository(db)), nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
}

// Options returns the aggregation options for the fixed-period views and for
// custom ranges.
func Options(cfg config.Config) (fixed, custom aggregation.Options) {
	fixed = aggregation.Options{
		LocalOffsetHours: cfg.LocalOffsetHours,
		MinWindSpeed:     cfg.WindMinSpeed,
	}
	custom = fixed
	custom.MinWindSpeed = cfg.CustomWindMinSpeed
	return fixed, custom
}

func RegisterFeature(mux *http.ServeMux, loader *archive.Loader, cfg config.Config) {
	fixed, custom := Options(cfg)
	weatherController := controller.NewWeatherController(loader, fixed, custom)
	weatherController.RegisterRoutes(mux)
}
