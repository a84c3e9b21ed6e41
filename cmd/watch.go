package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syzygy/internal/config"
	"github.com/papapumpkin/syzygy/internal/ui"
	"github.com/papapumpkin/syzygy/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-scan whenever the input fixture or database changes",
	Long: `Runs a scan like "syzygy scan", then watches the --aspects fixture and
the --db file and scans again after each settled edit. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("from", "", "window start (RFC3339, 2006-01-02T15:04 or 2006-01-02; UTC)")
	watchCmd.Flags().String("to", "", "window end, inclusive (default: end of the --from day)")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before re-scanning")
	addInputFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(c *cobra.Command, _ []string) error {
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

	var files []string
	for _, f := range []string{cfg.Input.Aspects, cfg.Input.DB} {
		if f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return errNoInput
	}

	debounce, _ := c.Flags().GetDuration("debounce")
	watcher, err := watch.New(debounce, files...)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	printer := ui.New(c.OutOrStdout())
	ctx, cancel := setupSignalContext(printer)
	defer cancel()
	logger := newLogger(c, cfg.Verbose)

	scan := func() {
		report, err := scanOnce(ctx, cfg, w, logger)
		if report != nil {
			printer.Report(report)
		}
		if err != nil {
			printer.Error(err.Error())
		}
	}
	scan()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			if ch.Kind == watch.ChangeRemoved {
				printer.Info(fmt.Sprintf("%s removed, waiting", ch.File))
				continue
			}
			printer.Info(fmt.Sprintf("%s modified, re-scanning", ch.File))
			scan()
		}
	}
}
