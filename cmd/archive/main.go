// Command archive maintains the monthly sample archive: it applies database
// migrations, imports monthly files into SQLite, rebuilds manifest.json and
// prints range summaries.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mateometeo/internal/config"
	"mateometeo/internal/db"
	"mateometeo/internal/logging"
	"mateometeo/internal/migrate"
	weather "mateometeo/internal/modules/weather"
	"mateometeo/internal/modules/weather/aggregation"
	"mateometeo/internal/modules/weather/archive"
	"mateometeo/internal/modules/weather/repository"
	"mateometeo/internal/modules/weather/types"
)

const appName = "mateometeo-archive"

var version = "dev"

const usage = `usage: archive <command> [args]

commands:
  migrate                       apply pending database migrations
  import [-month YYYY-MM] <dir> import monthly files from dir into SQLite
  manifest <dir>                rebuild dir/manifest.json from the YYYY_MM.json files
  summary <from> <to> [vars]    print the summary of a custom date range as JSON
`

var errUsage = errors.New("invalid usage")

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg, version, appName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		slog.Error("archive command failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "migrate":
		return runMigrate(ctx, cfg, out)
	case "import":
		return runImport(ctx, cfg, args[1:], out)
	case "manifest":
		return runManifest(args[1:], out)
	case "summary":
		return runSummary(ctx, cfg, args[1:], out)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := migrate.Run(ctx, conn); err != nil {
		_ = db.Close(conn)
		return nil, err
	}
	return conn, nil
}

func runMigrate(ctx context.Context, cfg config.Config, out io.Writer) error {
	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	applied, err := migrate.Run(ctx, conn)
	if err != nil {
		return err
	}
	for _, m := range applied {
		fmt.Fprintf(out, "applied %s_%s\n", m.Version, m.Name)
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "database is up to date")
	}
	return nil
}

func runImport(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	only := fs.String("month", "", "import a single month (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	src := archive.NewDirSource(fs.Arg(0))
	months, err := src.Months(ctx)
	if err != nil {
		return err
	}
	if *only != "" {
		m, err := archive.ParseMonth(*only)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		months = []archive.Month{m}
	}

	conn, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(conn)
	repo := repository.NewRepository(conn)

	total := 0
	for _, m := range months {
		samples, err := src.Load(ctx, m)
		if err != nil {
			return fmt.Errorf("import %s: %w", m, err)
		}
		n, err := repo.InsertSamples(ctx, m, src.Name(), samples)
		if err != nil {
			return fmt.Errorf("import %s: %w", m, err)
		}
		slog.Info("month imported", "month", m.String(), "samples", n, "skipped", len(samples)-n)
		fmt.Fprintf(out, "%s: %d samples\n", m, n)
		total += n
	}
	fmt.Fprintf(out, "imported %d samples from %d months\n", total, len(months))
	return nil
}

func runManifest(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	months, err := archive.WriteManifest(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d months: %s\n", len(months), archive.AvailabilitySummary(months))
	return nil
}

func runSummary(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		return errUsage
	}
	from, err := time.Parse(time.DateOnly, args[0])
	if err != nil {
		return fmt.Errorf("%w: from: %v", errUsage, err)
	}
	to, err := time.Parse(time.DateOnly, args[1])
	if err != nil {
		return fmt.Errorf("%w: to: %v", errUsage, err)
	}
	var vars []types.Variable
	if len(args) == 3 {
		if vars, err = types.ParseVariables(args[2]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}

	var conn *sql.DB
	if cfg.DataSource == config.SourceSQLite {
		if conn, err = openDB(ctx, cfg); err != nil {
			return err
		}
		defer closeDB(conn)
	}
	src, err := weather.NewSource(cfg, conn)
	if err != nil {
		return err
	}
	samples, err := archive.NewLoader(src, cfg.LocalOffsetHours).LoadRange(ctx, from, to)
	if err != nil {
		return err
	}

	_, opts := weather.Options(cfg)
	res, err := aggregation.AggregateCustomRange(samples, vars, aggregation.InclusiveDays(from, to), opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		From        string                  `json:"from"`
		To          string                  `json:"to"`
		Granularity aggregation.Granularity `json:"granularity"`
		Periods     int                     `json:"periods"`
		Summary     aggregation.Summary     `json:"summary"`
	}{
		From:        from.Format(time.DateOnly),
		To:          to.Format(time.DateOnly),
		Granularity: res.Granularity,
		Periods:     len(res.Periods),
		Summary:     res.Summary,
	})
}

func closeDB(conn *sql.DB) {
	if err := db.Close(conn); err != nil {
		slog.Error("db close", "error", err)
	}
}
