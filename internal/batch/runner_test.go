package batch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/batch"
	"swextract/internal/extract"
	"swextract/internal/faults"
	"swextract/internal/runlock"
	"swextract/internal/testsupport"
)

func TestRunIsolatesUnits(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedger())
	dir := cfg.Paths.InputDir

	// Completed: one pair fits the 2x5 matrix, one does not.
	testsupport.WriteAnnotationCSV(t, dir, "UPI007_humanReview(V2R3).csv",
		testsupport.AnnotationRow("2", "4", "A-P"),
		testsupport.AnnotationRow("4", "6", "P-A"),
		testsupport.AnnotationRow("1", "2", "Other"),
	)
	testsupport.WriteMatrixMAT(t, filepath.Join(dir, "UPI007-Visit2-Record3-Recon.mat"), "swSig_1Hz", testsupport.Sequence(2, 5))

	// Empty: the only pair is out of range.
	testsupport.WriteAnnotationCSV(t, dir, "UPI008_humanReview(V1R1).csv",
		testsupport.AnnotationRow("9", "11", "Other"),
	)
	testsupport.WriteMatrixMAT(t, filepath.Join(dir, "UPI008-Visit1-Record1-Recon.mat"), "swSig_1Hz", testsupport.Sequence(2, 5))

	// Failed: no instrument file.
	testsupport.WriteAnnotationCSV(t, dir, "UPI009_humanReview(V1R1).csv",
		testsupport.AnnotationRow("1", "3", "A-P"),
	)

	// Failed: unknown label.
	testsupport.WriteAnnotationCSV(t, dir, "UPI010_humanReview(V1R1).csv",
		testsupport.AnnotationRow("1", "3", "Sideways"),
	)

	// Skipped: name does not identify a unit.
	testsupport.WriteAnnotationCSV(t, dir, "notes.csv")

	var progress bytes.Buffer
	summary, err := batch.NewRunner(cfg, nil, &progress).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if got := summary.Counts; got.Completed != 1 || got.Empty != 1 || got.Failed != 2 || got.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}

	wantOrder := []string{
		"UPI007_humanReview(V2R3).csv",
		"UPI008_humanReview(V1R1).csv",
		"UPI009_humanReview(V1R1).csv",
		"UPI010_humanReview(V1R1).csv",
		"notes.csv",
	}
	for i, u := range summary.Units {
		if u.File != wantOrder[i] {
			t.Fatalf("unit %d = %s, want %s", i, u.File, wantOrder[i])
		}
	}

	first := summary.Units[0]
	if first.Status != faults.StatusCompleted || first.Rows != 1 || first.Skipped != 1 || len(first.Pairs) != 2 {
		t.Fatalf("unexpected first unit %+v", first)
	}
	got, err := extract.Verify(first.OutputPath, cfg.Output.Dataset)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	testsupport.MustEqualMatrix(t, got, mat.NewDense(1, 7, []float64{1, 200, 201, 300, 301, 400, 401}))

	if _, err := os.Stat(filepath.Join(dir, "extracted_columns__UPI008_Visit1_Record1.h5")); !os.IsNotExist(err) {
		t.Fatal("empty unit must not write an output file")
	}
	if !errors.Is(summary.Units[2].Err, faults.ErrIO) || !errors.Is(summary.Units[3].Err, faults.ErrUnmappedValue) {
		t.Fatalf("unexpected unit errors: %v / %v", summary.Units[2].Err, summary.Units[3].Err)
	}
	if summary.Err() == nil {
		t.Fatal("expected summary error for failed units")
	}

	out := progress.String()
	for _, want := range []string{
		"Processing file: UPI007_humanReview(V2R3).csv",
		"UPI Number: 007",
		"Index pairs: [(1, 2), (2, 4)]",
		"Skipping file: notes.csv",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("progress output missing %q:\n%s", want, out)
		}
	}

	store := testsupport.MustOpenLedger(t, cfg)
	runs, err := store.RecentRuns(context.Background(), 5)
	if err != nil || len(runs) != 1 || runs[0].ID != summary.RunID || runs[0].Counts.Total() != 5 {
		t.Fatalf("unexpected ledger runs %+v (%v)", runs, err)
	}
	units, err := store.UnitsForRun(context.Background(), summary.RunID)
	if err != nil || len(units) != 5 {
		t.Fatalf("unexpected ledger units %d (%v)", len(units), err)
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, err = batch.NewRunner(cfg, nil, nil).Run(context.Background())
	if !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
}

func TestRunFailsPreflight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.InputDir = filepath.Join(testsupport.BaseDir(cfg), "missing")
	if _, err := batch.NewRunner(cfg, nil, nil).Run(context.Background()); err == nil {
		t.Fatal("expected preflight failure")
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteAnnotationCSV(t, cfg.Paths.InputDir, "UPI1_humanReview(V1R1).csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := batch.NewRunner(cfg, nil, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(summary.Units) != 0 {
		t.Fatalf("expected no units processed, got %d", len(summary.Units))
	}
}

func TestListAnnotationsSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "A.CSV", "c.txt", "a.csv"} {
		testsupport.WriteBytes(t, filepath.Join(dir, name), []byte("x\n"))
	}
	if err := os.Mkdir(filepath.Join(dir, "d.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := batch.ListAnnotations(dir)
	if err != nil {
		t.Fatalf("ListAnnotations: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if strings.Join(names, ",") != "A.CSV,a.csv,b.csv" {
		t.Fatalf("unexpected files %v", names)
	}
}
