package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mateometeo/internal/config"
	db "mateometeo/internal/db"
	httpapi "mateometeo/internal/httpapi"
	"mateometeo/internal/migrate"
	weather "mateometeo/internal/modules/weather"
	"mateometeo/internal/modules/weather/archive"
	weatherviews "mateometeo/internal/modules/weather/views"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dataSource", cfg.DataSource,
		"dataDir", cfg.DataDir,
		"dataURL", cfg.DataURL,
		"localOffsetHours", cfg.LocalOffsetHours,
		"windMinSpeed", cfg.WindMinSpeed,
		"customWindMinSpeed", cfg.CustomWindMinSpeed,
	)

	var probes []httpapi.Probe
	var dbConn *sql.DB
	if cfg.DataSource == config.SourceSQLite {
		var err error
		dbConn, err = db.Open(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(dbConn); closeErr != nil {
				slog.Error("db close", "error", closeErr)
			}
		}()

		applied, err := migrate.Run(ctx, dbConn)
		if err != nil {
			return err
		}
		slog.Info("database ready", "path", cfg.Path, "migrationsApplied", len(applied))
		probes = append(probes, httpapi.Probe{Name: "db", Check: dbConn.PingContext})
	}

	source, err := weather.NewSource(cfg, dbConn)
	if err != nil {
		return err
	}
	cache := archive.NewCache(source)
	loader := archive.NewLoader(cache, cfg.LocalOffsetHours)
	probes = append(probes, httpapi.Probe{
		Name: "archive",
		Check: func(ctx context.Context) error {
			_, err := loader.Months(ctx)
			return err
		},
	})

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}
	mux := httpapi.NewMux(probes...)
	weather.RegisterFeature(mux, loader, cfg)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr, "source", cache.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down", "cache", cache.Stats())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
