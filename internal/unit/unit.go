package unit

import (
	"fmt"
	"path/filepath"
	"regexp"

	"swextract/internal/faults"
)

var (
	annotationPattern = regexp.MustCompile(`^UPI(\d+)_humanReview\(V(\d+)R(\d+)\)\.csv$`)
	matrixPattern     = regexp.MustCompile(`UPI(\d+)-Visit(\d+)-Record(\d+)`)
)

const (
	// AnnotationPattern describes accepted annotation file names.
	AnnotationPattern = "UPI<digits>_humanReview(V<digits>R<digits>).csv"
	// MatrixPattern describes the identifier section of instrument file names.
	MatrixPattern = "UPI<digits>-Visit<digits>-Record<digits>"
)

// ID identifies one subject/visit/record triple. The digit strings are kept
// verbatim so leading zeros survive into derived file names.
type ID struct {
	Subject string
	Visit   string
	Record  string
}

// String renders the ID the way log lines and tables show it.
func (id ID) String() string {
	return fmt.Sprintf("UPI%s V%s R%s", id.Subject, id.Visit, id.Record)
}

// IsZero reports whether the ID carries no identifiers.
func (id ID) IsZero() bool {
	return id.Subject == "" && id.Visit == "" && id.Record == ""
}

// MatrixFileName returns the instrument file name for the unit.
func (id ID) MatrixFileName(ext string) string {
	return fmt.Sprintf("UPI%s-Visit%s-Record%s-Recon%s", id.Subject, id.Visit, id.Record, ext)
}

// OutputFileName returns the extracted dataset file name for the unit.
func (id ID) OutputFileName() string {
	return fmt.Sprintf("extracted_columns__UPI%s_Visit%s_Record%s.h5", id.Subject, id.Visit, id.Record)
}

// ParseAnnotationName extracts the unit ID from an annotation file name such as
// UPI007_humanReview(V2R3).csv. Only the base name is inspected.
func ParseAnnotationName(path string) (ID, error) {
	name := filepath.Base(path)
	match := annotationPattern.FindStringSubmatch(name)
	if match == nil {
		return ID{}, faults.UnitName(name, AnnotationPattern)
	}
	return ID{Subject: match[1], Visit: match[2], Record: match[3]}, nil
}

// ParseMatrixName extracts the unit ID embedded anywhere in an instrument file
// name such as UPI007-Visit2-Record3-Recon.mat.
func ParseMatrixName(path string) (ID, error) {
	name := filepath.Base(path)
	match := matrixPattern.FindStringSubmatch(name)
	if match == nil {
		return ID{}, faults.Wrap(faults.ErrParse, "", "parse instrument name", fmt.Sprintf("%q does not contain %s", name, MatrixPattern), nil)
	}
	return ID{Subject: match[1], Visit: match[2], Record: match[3]}, nil
}
