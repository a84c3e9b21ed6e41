// Package engine drives the composition scan: it walks a time window minute
// by minute in UTC-day batches, runs every enabled detector at each minute
// on a bounded worker pool, and compacts the resulting instants into
// durations once every batch is done.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/papapumpkin/syzygy/internal/cache"
	"github.com/papapumpkin/syzygy/internal/compact"
	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/sky"
	"github.com/papapumpkin/syzygy/internal/telemetry"
)

// ErrEmptyWindow is returned when the scan window ends before it starts.
var ErrEmptyWindow = errors.New("empty scan window")

// Window is a closed scan interval. Both ends are truncated to the step.
type Window struct {
	From time.Time
	To   time.Time
}

// Input is what a scan reads: the raw two-body records and, optionally, a
// longitude source for the stellium detector and the pre-filters.
type Input struct {
	Records   []edge.Record
	Ephemeris ephemeris.Source
}

// Engine runs detectors over a window. The zero value is not usable; set
// at least Detectors.
type Engine struct {
	Detectors []pattern.Detector
	// Step is the evaluation stride and the phase-detector sampling step.
	// Defaults to one minute.
	Step time.Duration
	// Workers bounds the detector pool. Defaults to 1.
	Workers int
	Logger  *slog.Logger
	// Events receives the telemetry stream; nil disables it.
	Events *telemetry.Emitter
}

// Failure is a detector error at one minute. The batch carries on.
type Failure struct {
	At      time.Time
	Pattern sky.PatternKind
	Err     error
}

// BatchStats summarizes one UTC-day batch.
type BatchStats struct {
	Day      string
	Minutes  int
	Instants int
	Failures int
	Cache    cache.Stats
	Elapsed  time.Duration
}

// Report is the outcome of a scan.
type Report struct {
	Window    Window
	Instants  []pattern.Instant
	Durations []compact.Duration
	Failures  []Failure
	Skipped   []edge.Skipped
	Batches   []BatchStats
	// Coverage spans the earliest edge start to the latest edge end. It is
	// nil when no record produced an edge.
	Coverage *Window
	// Culled counts pre-filter rejections per pattern kind.
	Culled map[sky.PatternKind]int
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Engine) step() time.Duration {
	if e.Step <= 0 {
		return time.Minute
	}
	return e.Step
}

func (e *Engine) workers() int {
	if e.Workers <= 0 {
		return 1
	}
	return e.Workers
}

// Run scans w. Malformed records are skipped and detector failures are
// recorded; neither aborts the scan. On context cancellation Run returns
// the instants found so far together with the context error.
func (e *Engine) Run(ctx context.Context, in Input, w Window) (*Report, error) {
	step := e.step()
	from := w.From.UTC().Truncate(step)
	to := w.To.UTC().Truncate(step)
	if to.Before(from) {
		return nil, fmt.Errorf("engine: %s..%s: %w", w.From.Format(time.RFC3339), w.To.Format(time.RFC3339), ErrEmptyWindow)
	}

	edges, skipped := edge.Extract(in.Records, e.logger())
	report := &Report{Window: Window{From: from, To: to}, Skipped: skipped}
	if lo, hi, ok := edges.Bounds(); ok {
		report.Coverage = &Window{From: lo.UTC(), To: hi.UTC()}
	}
	e.emit(telemetry.Event{Kind: telemetry.KindScanStart, Data: map[string]any{
		"from":     from,
		"to":       to,
		"records":  len(in.Records),
		"edges":    edges.Len(),
		"patterns": kinds(e.Detectors),
	}})
	for _, s := range skipped {
		e.emit(telemetry.Event{Kind: telemetry.KindRecordSkipped, Data: map[string]string{
			"record": s.Record.ID,
			"error":  s.Err.Error(),
		}})
	}

	var runErr error
	for _, b := range batches(from, to, step) {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		stats, err := e.runBatch(ctx, edges, in.Ephemeris, b, report)
		report.Batches = append(report.Batches, stats)
		if err != nil {
			runErr = err
			break
		}
	}

	pattern.SortInstants(report.Instants)
	report.Durations = compact.Compact(report.Instants)
	for _, d := range report.Durations {
		e.emit(telemetry.Event{Kind: telemetry.KindPatternDuration, ID: d.ID(), Data: durationData(d)})
	}
	report.Culled = culled(e.Detectors)

	e.emit(telemetry.Event{Kind: telemetry.KindScanDone, Data: map[string]int{
		"instants":  len(report.Instants),
		"durations": len(report.Durations),
		"failures":  len(report.Failures),
		"skipped":   len(report.Skipped),
	}})
	if runErr != nil {
		return report, fmt.Errorf("engine: %w", runErr)
	}
	return report, nil
}

// detection is the outcome of one detector at one minute.
type detection struct {
	at       time.Time
	kind     sky.PatternKind
	instants []pattern.Instant
	err      error
}

func (e *Engine) runBatch(ctx context.Context, edges *edge.Set, eph ephemeris.Source, b Window, report *Report) (BatchStats, error) {
	start := time.Now()
	day := b.From.Format(time.DateOnly)
	step := e.step()

	// The cache lives for this batch only.
	frame := &pattern.Frame{
		Edges:     edges,
		Step:      step,
		Cache:     cache.New(),
		Ephemeris: eph,
		Logger:    e.logger(),
	}
	e.emit(telemetry.Event{Kind: telemetry.KindBatchStart, Batch: day, Data: map[string]time.Time{"from": b.From, "to": b.To}})

	p := pool.NewWithResults[detection]().WithMaxGoroutines(e.workers())
	minutes := 0
	var ctxErr error
	for t := b.From; !t.After(b.To); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		minutes++
		for _, d := range e.Detectors {
			p.Go(func() detection {
				found, err := d.Detect(frame, t)
				return detection{at: t, kind: d.Kind(), instants: found, err: err}
			})
		}
	}
	results := p.Wait()

	stats := BatchStats{Day: day, Minutes: minutes}
	var instants []pattern.Instant
	var failures []Failure
	for _, r := range results {
		instants = append(instants, r.instants...)
		if r.err != nil {
			failures = append(failures, Failure{At: r.at, Pattern: r.kind, Err: r.err})
		}
	}
	pattern.SortInstants(instants)
	sort.SliceStable(failures, func(i, j int) bool {
		if !failures[i].At.Equal(failures[j].At) {
			return failures[i].At.Before(failures[j].At)
		}
		return failures[i].Pattern < failures[j].Pattern
	})
	for _, in := range instants {
		e.emit(telemetry.Event{Kind: telemetry.KindPatternInstant, Batch: day, ID: in.ID(), Data: instantData(in)})
	}
	for _, f := range failures {
		e.logger().Warn("engine: detector failed", "pattern", f.Pattern, "at", f.At, "error", f.Err)
		e.emit(telemetry.Event{Kind: telemetry.KindDetectFailure, Batch: day, Data: map[string]string{
			"pattern": f.Pattern.Slug(),
			"at":      f.At.Format(time.RFC3339),
			"error":   f.Err.Error(),
		}})
	}
	report.Instants = append(report.Instants, instants...)
	report.Failures = append(report.Failures, failures...)

	stats.Instants = len(instants)
	stats.Failures = len(failures)
	stats.Cache = frame.Cache.Stats()
	stats.Elapsed = time.Since(start)
	e.logger().Info("engine: batch done",
		"day", day, "minutes", minutes, "instants", stats.Instants,
		"failures", stats.Failures, "cache_hits", stats.Cache.Hits, "elapsed", stats.Elapsed)
	e.emit(telemetry.Event{Kind: telemetry.KindBatchDone, Batch: day, Data: map[string]int{
		"minutes":    minutes,
		"instants":   stats.Instants,
		"failures":   stats.Failures,
		"cache_hits": stats.Cache.Hits,
	}})
	return stats, ctxErr
}

// batches splits [from, to] at UTC midnight. Every batch starts on a step
// boundary.
func batches(from, to time.Time, step time.Duration) []Window {
	var out []Window
	for start := from; !start.After(to); {
		midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		end := midnight.Add(-step)
		for end.Before(start) {
			end = end.Add(step)
		}
		if end.After(to) {
			end = to
		}
		out = append(out, Window{From: start, To: end})
		start = end.Add(step)
	}
	return out
}

func (e *Engine) emit(evt telemetry.Event) {
	if err := e.Events.Emit(evt); err != nil {
		e.logger().Warn("engine: telemetry", "error", err)
	}
}

func kinds(ds []pattern.Detector) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Kind().Slug()
	}
	return out
}

func culled(ds []pattern.Detector) map[sky.PatternKind]int {
	out := make(map[sky.PatternKind]int)
	for kind, ch := range pattern.Chains(ds) {
		per, _ := ch.Culled()
		n := 0
		for _, v := range per {
			n += v
		}
		out[kind] = n
	}
	return out
}
