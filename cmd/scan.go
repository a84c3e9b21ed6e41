package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syzygy/internal/config"
	"github.com/papapumpkin/syzygy/internal/engine"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/store"
	"github.com/papapumpkin/syzygy/internal/telemetry"
	"github.com/papapumpkin/syzygy/internal/ui"
)

// errNoInput is returned when neither a fixture nor a database is given.
var errNoInput = errors.New("no input: set --aspects or --db")

// timeLayouts are the accepted --from/--to forms, tried in order.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a time window for multi-body patterns",
	Long: `Reads two-body aspect records (and optional longitudes) from a TOML
fixture or the input database, evaluates every selected pattern at each
step of the window, and prints the compacted pattern durations.

Without --from, the scan covers the current UTC day.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("from", "", "window start (RFC3339, 2006-01-02T15:04 or 2006-01-02; UTC)")
	scanCmd.Flags().String("to", "", "window end, inclusive (default: end of the --from day)")
	addInputFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

// addInputFlags registers the flags shared by scan and watch and binds
// them to their config keys.
func addInputFlags(c *cobra.Command) {
	c.Flags().String("aspects", "", "TOML fixture of aspect records and longitudes")
	c.Flags().String("db", "", "SQLite input database")
	c.Flags().String("events", "", "append JSONL telemetry events to this file")
	c.Flags().StringSlice("pattern", nil, "patterns to detect (default: all)")
	c.Flags().Duration("step", 0, "evaluation step (default 1m)")
	c.Flags().Int("workers", 0, "detector pool size (default: CPU count)")
	c.Flags().Bool("no-prefilter", false, "disable the geometric pre-filters")
}

// applyFlagOverrides applies explicitly set CLI flags to the loaded config.
func applyFlagOverrides(c *cobra.Command, cfg *config.Config) error {
	flags := c.Flags()
	if flags.Changed("aspects") {
		cfg.Input.Aspects, _ = flags.GetString("aspects")
	}
	if flags.Changed("db") {
		cfg.Input.DB, _ = flags.GetString("db")
	}
	if flags.Changed("events") {
		cfg.Output.Events, _ = flags.GetString("events")
	}
	if flags.Changed("pattern") {
		cfg.Patterns, _ = flags.GetStringSlice("pattern")
	}
	if v, _ := flags.GetDuration("step"); v > 0 {
		cfg.Step = v
	}
	if v, _ := flags.GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	if v, _ := flags.GetBool("no-prefilter"); v {
		cfg.Prefilter.Enabled = false
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.Verbose = true
	}
	return cfg.Validate()
}

func runScan(c *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagOverrides(c, &cfg); err != nil {
		return err
	}
	w, err := parseWindow(c, time.Now())
	if err != nil {
		return err
	}

	printer := ui.New(c.OutOrStdout())
	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	report, err := scanOnce(ctx, cfg, w, newLogger(c, cfg.Verbose))
	if report != nil {
		printer.Report(report)
	}
	return err
}

// scanOnce loads the configured input and runs one scan over w.
func scanOnce(ctx context.Context, cfg config.Config, w engine.Window, logger *slog.Logger) (*engine.Report, error) {
	kinds, err := cfg.PatternKinds()
	if err != nil {
		return nil, err
	}
	detectors, err := pattern.NewSet(kinds, cfg.DetectorOptions())
	if err != nil {
		return nil, err
	}

	// Phase detection samples one step either side of the window.
	in, err := loadInput(ctx, cfg, w.From.Add(-cfg.Step), w.To.Add(cfg.Step))
	if err != nil {
		return nil, err
	}

	events, err := openEvents(cfg.Output.Events)
	if err != nil {
		return nil, err
	}
	defer events.Close()

	eng := &engine.Engine{
		Detectors: detectors,
		Step:      cfg.Step,
		Workers:   cfg.Workers,
		Logger:    logger,
		Events:    events,
	}
	return eng.Run(ctx, in, w)
}

// loadInput merges the fixture and database inputs. Fixture longitudes take
// precedence over database longitudes.
func loadInput(ctx context.Context, cfg config.Config, from, to time.Time) (engine.Input, error) {
	var in engine.Input
	if cfg.Input.Aspects == "" && cfg.Input.DB == "" {
		return in, errNoInput
	}

	if cfg.Input.Aspects != "" {
		fx, err := store.LoadFixture(cfg.Input.Aspects)
		if err != nil {
			return in, err
		}
		in.Records = append(in.Records, fx.Records()...)
		if in.Ephemeris, err = fx.Ephemeris(); err != nil {
			return in, err
		}
	}

	if cfg.Input.DB != "" {
		db, err := store.Open(ctx, cfg.Input.DB)
		if err != nil {
			return in, err
		}
		defer db.Close()

		records, err := db.LoadAspects(ctx, from, to)
		if err != nil {
			return in, err
		}
		in.Records = append(in.Records, records...)

		if in.Ephemeris == nil {
			tbl, err := db.LoadLongitudes(ctx, from, to)
			if err != nil {
				return in, err
			}
			in.Ephemeris = tableSource(tbl)
		}
	}
	return in, nil
}

// tableSource returns nil for an empty table so the stellium detector
// reports a missing ephemeris instead of a missing longitude per body.
func tableSource(tbl *ephemeris.Table) ephemeris.Source {
	if tbl == nil || tbl.Len() == 0 {
		return nil
	}
	return tbl
}

// openEvents opens the telemetry file, or returns a nil (no-op) emitter
// when path is empty.
func openEvents(path string) (*telemetry.Emitter, error) {
	if path == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(path)
}

// parseWindow reads --from and --to. A missing --from means the UTC day
// containing now; a missing --to means the last minute of the --from day.
func parseWindow(c *cobra.Command, now time.Time) (engine.Window, error) {
	fromS, _ := c.Flags().GetString("from")
	toS, _ := c.Flags().GetString("to")

	from := now.UTC().Truncate(24 * time.Hour)
	if fromS != "" {
		t, err := parseTime(fromS)
		if err != nil {
			return engine.Window{}, fmt.Errorf("--from: %w", err)
		}
		from = t
	}
	to := from.Truncate(24 * time.Hour).Add(24*time.Hour - time.Minute)
	if toS != "" {
		t, err := parseTime(toS)
		if err != nil {
			return engine.Window{}, fmt.Errorf("--to: %w", err)
		}
		to = t
	}
	return engine.Window{From: from, To: to}, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", s)
}

// setupSignalContext returns a context cancelled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
