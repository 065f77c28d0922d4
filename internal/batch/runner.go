package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"swextract/internal/annotation"
	"swextract/internal/config"
	"swextract/internal/extract"
	"swextract/internal/faults"
	"swextract/internal/ledger"
	"swextract/internal/logging"
	"swextract/internal/preflight"
	"swextract/internal/runlock"
	"swextract/internal/unit"
)

// UnitOutcome is the result of processing one annotation file.
type UnitOutcome struct {
	File       string
	Unit       unit.ID
	Status     faults.Status
	Pairs      []unit.IndexPair
	Rows       int
	Skipped    int
	OutputPath string
	Err        error
	Duration   time.Duration
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Units    []UnitOutcome
	Counts   ledger.Counts
}

// Runner processes every annotation file of the input directory, one unit
// at a time.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	progress  io.Writer
	processor *annotation.Processor
	extractor *extract.Extractor
}

// NewRunner wires the annotation processor and extractor from cfg. Progress
// lines go to progress, which is normally stdout.
func NewRunner(cfg *config.Config, logger *slog.Logger, progress io.Writer) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if progress == nil {
		progress = io.Discard
	}
	cols := annotation.Columns{
		Start: cfg.Annotation.StartColumn,
		End:   cfg.Annotation.EndColumn,
		Label: cfg.Annotation.LabelColumn,
	}
	return &Runner{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "batch"),
		progress:  progress,
		processor: annotation.NewProcessor(cols, cfg.Annotation.BoundaryGap, logger),
		extractor: extract.New(cfg, logger),
	}
}

// Run checks the directories, takes the run lock and processes every unit.
// Unit failures are recorded in the summary; only problems that prevent the
// run itself are returned as errors. Cancellation is observed between units.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Started: time.Now()}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	if err := preflight.Summarize(preflight.RunAll(r.cfg)); err != nil {
		return summary, faults.Wrap(faults.ErrIO, "", "preflight", "", err)
	}

	lock, err := runlock.Acquire(r.cfg.LockPath())
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release run lock", logging.Error(err))
		}
	}()

	files, err := ListAnnotations(r.cfg.Paths.InputDir)
	if err != nil {
		return summary, err
	}

	store := r.openLedger(ctx, logger, summary)
	if store != nil {
		defer store.Close()
	}

	logger.Info("run started",
		logging.String("input_dir", r.cfg.Paths.InputDir),
		logging.String("output_dir", r.cfg.Paths.OutputDir),
		logging.Int("files", len(files)),
	)

	var runErr error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		outcome := r.ProcessUnit(ctx, path)
		summary.Units = append(summary.Units, outcome)
		summary.Counts.Add(outcome.Status)
		r.recordUnit(ctx, logger, store, summary.RunID, outcome)
	}
	summary.Finished = time.Now()

	if store != nil {
		if err := store.FinishRun(context.WithoutCancel(ctx), summary.RunID, summary.Counts, runErr); err != nil {
			logging.WarnWithContext(logger, "ledger update failed", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run history is incomplete"),
			)
		}
	}

	logger.Info("run finished",
		logging.Int("completed", summary.Counts.Completed),
		logging.Int("empty", summary.Counts.Empty),
		logging.Int("skipped", summary.Counts.Skipped),
		logging.Int("failed", summary.Counts.Failed),
		logging.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)
	return summary, runErr
}

// ProcessUnit runs one annotation file through the processor and extractor.
// Every error is caught here and classified; nothing escapes to the caller.
func (r *Runner) ProcessUnit(ctx context.Context, path string) UnitOutcome {
	started := time.Now()
	name := filepath.Base(path)
	outcome := UnitOutcome{File: name}

	finish := func(err error) UnitOutcome {
		outcome.Err = err
		outcome.Status = faults.Classify(err)
		outcome.Duration = time.Since(started)
		r.logOutcome(outcome)
		return outcome
	}

	id, err := unit.ParseAnnotationName(name)
	if err != nil {
		fmt.Fprintf(r.progress, "Skipping file: %s\n\n", name)
		return finish(err)
	}
	outcome.Unit = id

	fmt.Fprintf(r.progress, "Processing file: %s\n", name)
	fmt.Fprintf(r.progress, "UPI Number: %s\nVisit Number: %s\nRecord Number: %s\n", id.Subject, id.Visit, id.Record)

	result, err := r.processor.Process(path)
	if err != nil {
		fmt.Fprintf(r.progress, "Failed: %v\n\n", err)
		return finish(err)
	}
	outcome.Pairs = result.Pairs
	fmt.Fprintf(r.progress, "Index pairs: %s\n", formatPairs(result.Pairs))

	matrixPath := filepath.Join(r.cfg.Paths.InputDir, id.MatrixFileName(r.cfg.Instrument.Extension))
	extracted, err := r.extractor.Extract(ctx, matrixPath, result.Pairs)
	outcome.Skipped = len(extracted.Skipped)
	if err != nil {
		fmt.Fprintf(r.progress, "No output: %v\n\n", err)
		return finish(err)
	}
	outcome.Rows = extracted.Rows
	outcome.OutputPath = extracted.OutputPath
	fmt.Fprintf(r.progress, "Wrote %s (%d rows, %d skipped)\n\n", filepath.Base(extracted.OutputPath), extracted.Rows, outcome.Skipped)
	return finish(nil)
}

func (r *Runner) logOutcome(o UnitOutcome) {
	logger := r.logger
	if !o.Unit.IsZero() {
		logger = logging.WithUnit(logger, o.Unit)
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldFile, o.File),
		logging.String("status", string(o.Status)),
		logging.Duration("elapsed", o.Duration),
	}

	switch o.Status {
	case faults.StatusCompleted:
		logger.Info("unit completed", logging.Args(append(attrs,
			logging.Int("pairs", len(o.Pairs)),
			logging.Int("rows", o.Rows),
		)...)...)
	case faults.StatusSkipped:
		logger.Info("unit skipped", logging.Args(append(attrs, logging.Error(o.Err))...)...)
	case faults.StatusEmpty:
		logging.ErrorWithContext(logger, "no rows extracted; output not written", "empty_result", append(attrs,
			logging.Int("pairs", len(o.Pairs)),
			logging.Int("skipped_pairs", o.Skipped),
			logging.String(logging.FieldErrorHint, faults.Hint(o.Err)),
			logging.Error(o.Err),
		)...)
	default:
		logging.ErrorWithContext(logger, "unit failed", "unit_failed", append(attrs,
			logging.String(logging.FieldErrorHint, faults.Hint(o.Err)),
			logging.Error(o.Err),
		)...)
	}
}

func (r *Runner) openLedger(ctx context.Context, logger *slog.Logger, summary Summary) *ledger.Store {
	if !r.cfg.Ledger.Enabled {
		return nil
	}
	store, err := ledger.Open(r.cfg.Ledger.Path)
	if err == nil {
		err = store.BeginRun(ctx, ledger.Run{
			ID:        summary.RunID,
			InputDir:  r.cfg.Paths.InputDir,
			OutputDir: r.cfg.Paths.OutputDir,
			StartedAt: summary.Started,
		})
		if err != nil {
			store.Close()
		}
	}
	if err != nil {
		logging.WarnWithContext(logger, "ledger unavailable", "ledger_open_failed",
			logging.String("path", r.cfg.Ledger.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history will not be recorded"),
		)
		return nil
	}
	return store
}

func (r *Runner) recordUnit(ctx context.Context, logger *slog.Logger, store *ledger.Store, runID string, o UnitOutcome) {
	if store == nil {
		return
	}
	rec := ledger.UnitRecord{
		RunID:          runID,
		AnnotationFile: o.File,
		Subject:        o.Unit.Subject,
		Visit:          o.Unit.Visit,
		Record:         o.Unit.Record,
		Status:         o.Status,
		Pairs:          len(o.Pairs),
		Rows:           o.Rows,
		SkippedPairs:   o.Skipped,
		OutputPath:     o.OutputPath,
		Duration:       o.Duration,
	}
	if o.Err != nil {
		rec.ErrorMessage = o.Err.Error()
	}
	if err := store.RecordUnit(context.WithoutCancel(ctx), rec); err != nil {
		logging.WarnWithContext(logger, "ledger update failed", "ledger_write_failed",
			logging.String(logging.FieldFile, o.File),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history is incomplete"),
		)
	}
}

// ListAnnotations returns the .csv files of dir in lexical order.
func ListAnnotations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "list annotations", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(files)
	return files, nil
}

func formatPairs(pairs []unit.IndexPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Err returns an error summarizing failed units, or nil when none failed.
func (s Summary) Err() error {
	var errs []error
	for _, u := range s.Units {
		if u.Status == faults.StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %w", u.File, u.Err))
		}
	}
	return errors.Join(errs...)
}
