// Package run drives a batch extraction: one sequential pass over the
// dataset, one extraction attempt per record, per-record fault isolation.
package run

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/evidencelabs/spark/internal/aggregate"
	"github.com/evidencelabs/spark/internal/extract"
	"github.com/evidencelabs/spark/internal/ingest"
	"github.com/evidencelabs/spark/internal/schema"
	"github.com/evidencelabs/spark/internal/svcctx"
	"github.com/evidencelabs/spark/internal/viz"
)

// Extractor is the single-record extraction capability the driver needs.
type Extractor interface {
	ExtractOne(ctx context.Context, text string, s *schema.Schema) ([]extract.Span, error)
}

// Outcome tags a record's result.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Status is the terminal state of a whole run. A run never fails as a
// whole; record failures only degrade it to completed-with-errors.
type Status string

const (
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
)

// RecordResult is one record's tagged outcome.
type RecordResult struct {
	// Number is the 1-based position in the input sequence.
	Number  int
	Outcome Outcome
	Err     error
}

// Result accumulates a run's outputs. Rows always has one entry per
// input record, in input order; cells are blank for skipped and failed
// records. Docs holds visualizations for successful records only, so
// gaps in their numbering correspond exactly to skips and failures.
type Result struct {
	RunID   string
	Status  Status
	Rows    []map[string]string
	Docs    []viz.Document
	Records []RecordResult
	Stats   aggregate.Stats
}

// FailedNumbers returns the 1-based positions of failed records.
func (r *Result) FailedNumbers() []int {
	var out []int
	for _, rec := range r.Records {
		if rec.Outcome == OutcomeFailed {
			out = append(out, rec.Number)
		}
	}
	return out
}

// ErrorSummary describes failures for the end-of-run report, or "" when
// every record succeeded or was skipped.
func (r *Result) ErrorSummary() string {
	failed := r.FailedNumbers()
	if len(failed) == 0 {
		return ""
	}
	nums := make([]string, len(failed))
	for i, n := range failed {
		nums[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d of %d records failed extraction (records %s)",
		len(failed), len(r.Records), strings.Join(nums, ", "))
}

// Options configures a Runner.
type Options struct {
	// Progress, if set, is called after every record with the number of
	// records processed so far and the total. It always reaches
	// (total, total) regardless of per-record outcomes.
	Progress func(processed, total int)

	// SkipViz disables visualization rendering.
	SkipViz bool
}

// Runner executes batch extraction runs.
type Runner struct {
	extractor Extractor
	opts      Options
}

// New creates a Runner.
func New(extractor Extractor, opts Options) *Runner {
	return &Runner{extractor: extractor, opts: opts}
}

// Run processes every record in input order. The schema is validated and
// its derived instructions refreshed before any extraction happens.
// Context cancellation is honored at record boundaries only; an in-flight
// extraction call blocks until its own timeout.
func (r *Runner) Run(ctx context.Context, ds *ingest.Dataset, s *schema.Schema) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	s.Refresh()

	logger := svcctx.LoggerFrom(ctx)
	names := s.EntityNames()
	total := len(ds.Records)

	result := &Result{
		RunID:  uuid.New().String(),
		Status: StatusCompleted,
	}

	logger.Info("starting extraction run",
		"run_id", result.RunID,
		"records", total,
		"entities", len(names),
	)

	for i, rec := range ds.Records {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run aborted after %d of %d records: %w", i, total, err)
		}

		number := i + 1
		outcome := r.processRecord(ctx, number, rec, s, names, result)
		result.Records = append(result.Records, outcome)

		if r.opts.Progress != nil {
			r.opts.Progress(number, total)
		}
	}

	result.Stats = aggregate.ComputeStats(result.Rows, names)

	if len(result.FailedNumbers()) > 0 {
		result.Status = StatusCompletedWithErrors
	}

	logger.Info("extraction run finished",
		"run_id", result.RunID,
		"status", string(result.Status),
		"records", total,
		"failed", len(result.FailedNumbers()),
	)
	return result, nil
}

// blankRow returns a row with every entity cell empty.
func blankRow(names []string) map[string]string {
	row := make(map[string]string, len(names))
	for _, name := range names {
		row[name] = ""
	}
	return row
}

// processRecord handles one record and appends its row (and, on success,
// its visualization) to the result. Failures are contained here: they
// produce a blank row and a warning, never an aborted run.
func (r *Runner) processRecord(ctx context.Context, number int, rec ingest.Record, s *schema.Schema, names []string, result *Result) RecordResult {
	logger := svcctx.LoggerFrom(ctx)

	text := rec.ExtractionText()
	if text == "" {
		result.Rows = append(result.Rows, blankRow(names))
		logger.Debug("record skipped: no title or abstract", "record", number)
		return RecordResult{Number: number, Outcome: OutcomeSkipped}
	}

	spans, err := r.extractor.ExtractOne(ctx, text, s)
	if err != nil {
		result.Rows = append(result.Rows, blankRow(names))
		logger.Warn("record extraction failed", "record", number, "error", err)
		return RecordResult{Number: number, Outcome: OutcomeFailed, Err: err}
	}

	result.Rows = append(result.Rows, aggregate.Aggregate(spans, names))

	if !r.opts.SkipViz {
		doc, err := viz.Render(number, text, spans, names)
		if err != nil {
			// Aggregates are already recorded; losing one visualization
			// doesn't fail the record.
			logger.Warn("visualization rendering failed", "record", number, "error", err)
		} else {
			result.Docs = append(result.Docs, doc)
		}
	}

	return RecordResult{Number: number, Outcome: OutcomeSuccess}
}
