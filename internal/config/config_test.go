package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR",
	"DATA_SOURCE", "DATA_DIR", "DATA_URL", "DATA_FETCH_RPS", "DATA_FETCH_BURST", "DATA_FETCH_TIMEOUT",
	"LOCAL_OFFSET_HOURS", "WIND_MIN_SPEED", "CUSTOM_WIND_MIN_SPEED",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_LOG_SQL",
}

// cleanEnv blanks every variable LoadFromEnv reads and points ENV_FILE at a
// file that does not exist.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cleanEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.DataSource != SourceDir || got.DataDir != "data" {
		t.Errorf("DataSource/DataDir = %q/%q, want dir/data", got.DataSource, got.DataDir)
	}
	if got.FetchRPS != 5 || got.FetchBurst != 5 || got.FetchTimeout != 10*time.Second {
		t.Errorf("fetch limits = %v/%d/%v, want 5/5/10s", got.FetchRPS, got.FetchBurst, got.FetchTimeout)
	}
	if got.LocalOffsetHours != 2 {
		t.Errorf("LocalOffsetHours = %d, want 2", got.LocalOffsetHours)
	}
	if got.WindMinSpeed != 0.5 || got.CustomWindMinSpeed != 0.5 {
		t.Errorf("wind thresholds = %v/%v, want 0.5/0.5", got.WindMinSpeed, got.CustomWindMinSpeed)
	}
	if got.Driver != "sqlite3" || got.Path != "data/archive.db" || got.MaxOpenConns != 1 {
		t.Errorf("db = %q/%q/%d, want sqlite3/data/archive.db/1", got.Driver, got.Path, got.MaxOpenConns)
	}
	if got.LogSQL {
		t.Error("LogSQL = true, want false")
	}
}

func TestLoadFromEnv_AppEnv(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		want    string
		wantErr bool
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
		{name: "staging", appEnv: "staging", wantErr: true},
		{name: "uppercase is not lowered", appEnv: "DEV", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_DataSource(t *testing.T) {
	t.Run("http requires DATA_URL", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("DATA_SOURCE", "http")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})

	t.Run("http with DATA_URL", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("DATA_SOURCE", "http")
		t.Setenv("DATA_URL", " http://archive.local/data ")
		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.DataURL != "http://archive.local/data" {
			t.Errorf("DataURL = %q, want trimmed URL", got.DataURL)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("DATA_SOURCE", "s3")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})
}

func TestLoadFromEnv_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DATA_FETCH_RPS", "fast"},
		{"DATA_FETCH_RPS", "0"},
		{"DATA_FETCH_BURST", "0"},
		{"DATA_FETCH_TIMEOUT", "10"},
		{"LOCAL_OFFSET_HOURS", "15"},
		{"LOCAL_OFFSET_HOURS", "-13"},
		{"LOCAL_OFFSET_HOURS", "2.5"},
		{"WIND_MIN_SPEED", "-1"},
		{"CUSTOM_WIND_MIN_SPEED", "calm"},
		{"DB_MAX_OPEN_CONNS", "many"},
		{"DB_CONN_MAX_LIFETIME", "forever"},
		{"DB_LOG_SQL", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("LOCAL_OFFSET_HOURS", "-5")
	t.Setenv("CUSTOM_WIND_MIN_SPEED", "1.0")
	t.Setenv("DB_LOG_SQL", "true")
	t.Setenv("DATA_FETCH_TIMEOUT", "2s")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.LocalOffsetHours != -5 {
		t.Errorf("LocalOffsetHours = %d, want -5", got.LocalOffsetHours)
	}
	if got.CustomWindMinSpeed != 1.0 {
		t.Errorf("CustomWindMinSpeed = %v, want 1.0", got.CustomWindMinSpeed)
	}
	if !got.LogSQL {
		t.Error("LogSQL = false, want true")
	}
	if got.FetchTimeout != 2*time.Second {
		t.Errorf("FetchTimeout = %v, want 2s", got.FetchTimeout)
	}
}

func TestLoadFromEnv_Dotenv(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	body := "HTTP_ADDR=:9999\nDATA_DIR=/srv/weather\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)

	// let the file fill HTTP_ADDR and DATA_DIR; t.Setenv restores them afterwards
	for _, k := range []string{"HTTP_ADDR", "DATA_DIR"} {
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
	t.Setenv("LOG_LEVEL", "warn")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want %q from env file", got.HTTPAddr, ":9999")
	}
	if got.DataDir != "/srv/weather" {
		t.Errorf("DataDir = %q, want %q from env file", got.DataDir, "/srv/weather")
	}
	if got.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelWarn)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "warning", want: slog.LevelWarn},
		{in: "DeBuG", want: slog.LevelDebug},
		{in: "  error \n", want: slog.LevelError},
		{in: "", want: slog.LevelInfo, wantErr: true},
		{in: "warns", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
