package unit_test

import (
	"errors"
	"testing"

	"swextract/internal/faults"
	"swextract/internal/unit"
)

func TestParseAnnotationName(t *testing.T) {
	id, err := unit.ParseAnnotationName("/data/UPI007_humanReview(V2R3).csv")
	if err != nil {
		t.Fatalf("ParseAnnotationName: %v", err)
	}
	want := unit.ID{Subject: "007", Visit: "2", Record: "3"}
	if id != want {
		t.Fatalf("id = %+v, want %+v", id, want)
	}
}

func TestParseAnnotationNameRejectsOtherFiles(t *testing.T) {
	for _, name := range []string{
		"notes.csv",
		"UPI007_humanReview(V2R3).xlsx",
		"UPI7_humanreview(V2R3).csv",
		"UPIx_humanReview(V2R3).csv",
		"UPI007_humanReview(V2R3).csv.bak",
	} {
		id, err := unit.ParseAnnotationName(name)
		if err == nil {
			t.Fatalf("%s: expected error, got %+v", name, id)
		}
		if !errors.Is(err, faults.ErrParse) {
			t.Fatalf("%s: expected parse error, got %v", name, err)
		}
		if faults.Classify(err) != faults.StatusSkipped {
			t.Fatalf("%s: expected skipped classification", name)
		}
		if !id.IsZero() {
			t.Fatalf("%s: expected zero id, got %+v", name, id)
		}
	}
}

func TestParseMatrixName(t *testing.T) {
	id, err := unit.ParseMatrixName("recordings/UPI12-Visit1-Record4-Recon.mat")
	if err != nil {
		t.Fatalf("ParseMatrixName: %v", err)
	}
	if id.Subject != "12" || id.Visit != "1" || id.Record != "4" {
		t.Fatalf("unexpected id %+v", id)
	}
	if _, err := unit.ParseMatrixName("signal.mat"); !errors.Is(err, faults.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestDerivedFileNames(t *testing.T) {
	id := unit.ID{Subject: "007", Visit: "2", Record: "3"}
	if got := id.MatrixFileName(".mat"); got != "UPI007-Visit2-Record3-Recon.mat" {
		t.Fatalf("matrix name = %q", got)
	}
	if got := id.OutputFileName(); got != "extracted_columns__UPI007_Visit2_Record3.h5" {
		t.Fatalf("output name = %q", got)
	}
	if got := id.String(); got != "UPI007 V2 R3" {
		t.Fatalf("String = %q", got)
	}
	roundTrip, err := unit.ParseMatrixName(id.MatrixFileName(".mat"))
	if err != nil || roundTrip != id {
		t.Fatalf("round trip = %+v, %v", roundTrip, err)
	}
}

func TestIndexPairOffset(t *testing.T) {
	p := unit.IndexPair{Code: 1, Start: 2}
	if p.Offset() != 1 {
		t.Fatalf("offset = %d, want 1", p.Offset())
	}
	if p.String() != "(1, 2)" {
		t.Fatalf("String = %q", p.String())
	}
}
