package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"swextract/internal/faults"
)

const runColumns = "id, input_dir, output_dir, started_at, finished_at, completed, empty, skipped, failed, error_message"

const unitColumns = "id, run_id, annotation_file, subject, visit, record, status, pairs, rows_written, skipped_pairs, output_path, error_message, duration_ms, recorded_at"

// ErrRunNotFound is returned when a run ID has no history.
var ErrRunNotFound = errors.New("run not found")

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, input_dir, output_dir, started_at) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.InputDir,
		run.OutputDir,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordUnit appends a unit outcome to its run.
func (s *Store) RecordUnit(ctx context.Context, rec UnitRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO units (
            run_id, annotation_file, subject, visit, record, status, pairs,
            rows_written, skipped_pairs, output_path, error_message, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.AnnotationFile,
		nullableString(rec.Subject),
		nullableString(rec.Visit),
		nullableString(rec.Record),
		string(rec.Status),
		rec.Pairs,
		rec.Rows,
		rec.SkippedPairs,
		nullableString(rec.OutputPath),
		nullableString(rec.ErrorMessage),
		rec.Duration.Milliseconds(),
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// FinishRun stores the final counts of a run. A non-nil runErr marks a run
// that stopped before visiting every unit.
func (s *Store) FinishRun(ctx context.Context, id string, counts Counts, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, completed = ?, empty = ?, skipped = ?, failed = ?, error_message = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		counts.Completed,
		counts.Empty,
		counts.Skipped,
		counts.Failed,
		nullableString(message),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by ID, accepting any unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY started_at DESC LIMIT 2`, id+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// UnitsForRun lists the unit outcomes of a run in processing order.
func (s *Store) UnitsForRun(ctx context.Context, runID string) ([]UnitRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+unitColumns+` FROM units WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []UnitRecord
	for rows.Next() {
		var (
			rec        UnitRecord
			subject    sql.NullString
			visit      sql.NullString
			record     sql.NullString
			status     string
			outputPath sql.NullString
			errMessage sql.NullString
			durationMS int64
			recorded   string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.AnnotationFile, &subject, &visit, &record, &status,
			&rec.Pairs, &rec.Rows, &rec.SkippedPairs, &outputPath, &errMessage, &durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		rec.Subject = subject.String
		rec.Visit = visit.String
		rec.Record = record.String
		rec.Status = faults.Status(status)
		rec.OutputPath = outputPath.String
		rec.ErrorMessage = errMessage.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := parseTimeString(recorded); err == nil {
			rec.RecordedAt = ts
		}
		units = append(units, rec)
	}
	return units, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		startedRaw string
		finished   sql.NullString
		errMessage sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.InputDir, &run.OutputDir, &startedRaw, &finished,
		&run.Counts.Completed, &run.Counts.Empty, &run.Counts.Skipped, &run.Counts.Failed, &errMessage); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	started, err := parseTimeString(startedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started
	if finished.Valid {
		if ts, err := parseTimeString(finished.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	run.ErrorMessage = errMessage.String
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
