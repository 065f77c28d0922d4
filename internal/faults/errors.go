package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO               = errors.New("io error")
	ErrParse            = errors.New("parse error")
	ErrUnmappedValue    = errors.New("unmapped categorical value")
	ErrVariableNotFound = errors.New("variable not found")
	ErrShape            = errors.New("shape error")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEmptyResult      = errors.New("empty result")
	ErrNotFound         = errors.New("not found")
	ErrConfiguration    = errors.New("configuration error")
)

// Status is the outcome recorded for a processed unit.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Wrap builds an error message that includes unit context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, unit, operation, message string, err error) error {
	detail := buildDetail(unit, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps a unit error to the status persisted for that unit.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, ErrEmptyResult):
		return StatusEmpty
	case errors.Is(err, ErrParse) && errors.Is(err, errUnitName):
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// errUnitName tags parse failures of a unit's file name. Those units never
// start, so they are reported as skipped rather than failed.
var errUnitName = errors.New("unit name does not match")

// UnitName returns a parse error for a file name that does not identify a unit.
func UnitName(name, pattern string) error {
	return fmt.Errorf("%w: %q does not match %s: %w", ErrParse, name, pattern, errUnitName)
}

// Hint returns a short operator-facing suggestion for the error's marker.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrUnmappedValue):
		return "add the label to the direction code table or correct the annotation"
	case errors.Is(err, ErrVariableNotFound):
		return "check instrument.variable against `swextract inspect` output"
	case errors.Is(err, ErrShape):
		return "the instrument variable must be a real 2-D numeric array"
	case errors.Is(err, ErrEmptyResult):
		return "no annotated window fits inside the instrument matrix"
	case errors.Is(err, ErrParse):
		return "check the file name pattern and numeric annotation cells"
	case errors.Is(err, ErrIO):
		return "check that the input files exist and are readable"
	default:
		return "check logs for details"
	}
}

func buildDetail(unit, operation, message string) string {
	parts := make([]string, 0, 3)
	if unit = strings.TrimSpace(unit); unit != "" {
		parts = append(parts, unit)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "unit failure"
	}
	return strings.Join(parts, ": ")
}
