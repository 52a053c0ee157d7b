package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceDir    = "dir"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DataSource selects where monthly samples come from: dir, http or sqlite.
	DataSource   string
	DataDir      string
	DataURL      string
	FetchRPS     float64
	FetchBurst   int
	FetchTimeout time.Duration

	LocalOffsetHours int
	// WindMinSpeed applies to the day and month views, CustomWindMinSpeed to
	// custom ranges.
	WindMinSpeed       float64
	CustomWindMinSpeed float64

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// LoadFromEnv reads the optional dotenv file named by ENV_FILE (default .env)
// and then the process environment. Variables already set win over the file.
func LoadFromEnv() (Config, error) {
	if err := loadDotenv(); err != nil {
		return Config{}, err
	}

	appEnv := envString("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:     appEnv,
		LogLevel:   level,
		HTTPAddr:   envString("HTTP_ADDR", ":8080"),
		DataSource: envString("DATA_SOURCE", SourceDir),
		DataDir:    envString("DATA_DIR", "data"),
		DataURL:    envString("DATA_URL", ""),
		Driver:     envString("DB_DRIVER", "sqlite3"),
		DSN:        envString("DB_DSN", ""),
		Path:       envString("SQLITE_PATH", "data/archive.db"),
	}

	switch cfg.DataSource {
	case SourceDir, SourceSQLite:
	case SourceHTTP:
		if cfg.DataURL == "" {
			return Config{}, errors.New("DATA_URL is required when DATA_SOURCE=http")
		}
	default:
		return Config{}, fmt.Errorf("invalid DATA_SOURCE %q (allowed: dir, http, sqlite)", cfg.DataSource)
	}

	if cfg.FetchRPS, err = envFloat("DATA_FETCH_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.FetchRPS <= 0 {
		return Config{}, fmt.Errorf("invalid DATA_FETCH_RPS %v (must be > 0)", cfg.FetchRPS)
	}
	if cfg.FetchBurst, err = envInt("DATA_FETCH_BURST", 5); err != nil {
		return Config{}, err
	}
	if cfg.FetchBurst < 1 {
		return Config{}, fmt.Errorf("invalid DATA_FETCH_BURST %d (must be >= 1)", cfg.FetchBurst)
	}
	if cfg.FetchTimeout, err = envDuration("DATA_FETCH_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.LocalOffsetHours, err = envInt("LOCAL_OFFSET_HOURS", 2); err != nil {
		return Config{}, err
	}
	if cfg.LocalOffsetHours < -12 || cfg.LocalOffsetHours > 14 {
		return Config{}, fmt.Errorf("invalid LOCAL_OFFSET_HOURS %d (allowed: -12..14)", cfg.LocalOffsetHours)
	}
	if cfg.WindMinSpeed, err = envFloat("WIND_MIN_SPEED", 0.5); err != nil {
		return Config{}, err
	}
	if cfg.CustomWindMinSpeed, err = envFloat("CUSTOM_WIND_MIN_SPEED", 0.5); err != nil {
		return Config{}, err
	}
	if cfg.WindMinSpeed < 0 || cfg.CustomWindMinSpeed < 0 {
		return Config{}, errors.New("WIND_MIN_SPEED and CUSTOM_WIND_MIN_SPEED must not be negative")
	}

	if cfg.MaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", 1); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", 1); err != nil {
		return Config{}, err
	}
	if cfg.ConnMaxLifetime, err = envDuration("DB_CONN_MAX_LIFETIME", 0); err != nil {
		return Config{}, err
	}
	if cfg.LogSQL, err = envBool("DB_LOG_SQL", false); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDotenv() error {
	path := envString("ENV_FILE", ".env")
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load ENV_FILE %q: %w", path, err)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
