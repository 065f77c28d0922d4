package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"swextract/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrIO, "UPI007 V2 R3", "load table", "open failed", base)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"UPI007 V2 R3", "load table", "open failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := faults.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "unit failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want faults.Status
	}{
		{"nil", nil, faults.StatusCompleted},
		{"empty", faults.Wrap(faults.ErrEmptyResult, "u", "extract", "no rows", nil), faults.StatusEmpty},
		{"unit name", faults.UnitName("notes.csv", "UPI<d>_humanReview(V<d>R<d>).csv"), faults.StatusSkipped},
		{"cell parse", faults.Wrap(faults.ErrParse, "u", "project", "bad cell", nil), faults.StatusFailed},
		{"unmapped", fmt.Errorf("remap: %w", faults.ErrUnmappedValue), faults.StatusFailed},
		{"shape", faults.Wrap(faults.ErrShape, "u", "resolve", "3-D", nil), faults.StatusFailed},
	}
	for _, tc := range cases {
		if got := faults.Classify(tc.err); got != tc.want {
			t.Fatalf("%s: Classify = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestUnitNameIsParseError(t *testing.T) {
	err := faults.UnitName("x.csv", "pattern")
	if !errors.Is(err, faults.ErrParse) {
		t.Fatalf("expected parse marker, got %v", err)
	}
	if faults.Hint(err) == "" {
		t.Fatal("expected hint")
	}
}
