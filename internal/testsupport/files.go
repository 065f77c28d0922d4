package testsupport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/matfile"
)

// AnnotationHeader is the nine-column header of a human review export.
var AnnotationHeader = []string{
	"Event", "Time", "Start", "End", "Duration", "Reviewer", "Quality", "Notes", "Direction",
}

// AnnotationRow builds a nine-column row with the boundary cells at columns 2
// and 3 and the direction label at column 8.
func AnnotationRow(start, end, label string) []string {
	return []string{"swallow", "00:00:01", start, end, "", "rev", "good", "", label}
}

// WriteAnnotationCSV writes a header plus rows into dir/name and returns the
// full path.
func WriteAnnotationCSV(t testing.TB, dir, name string, rows ...[]string) string {
	t.Helper()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(AnnotationHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	path := filepath.Join(dir, name)
	WriteBytes(t, path, buf.Bytes())
	return path
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Sequence returns a rows x cols matrix whose element (i, j) is
// 100*(j+1) + i, so every value names its own position.
func Sequence(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range rows {
		for j := range cols {
			data[i*cols+j] = float64(100*(j+1) + i)
		}
	}
	return mat.NewDense(rows, cols, data)
}

// WriteMAT writes a Level 5 MAT file holding vars.
func WriteMAT(t testing.TB, path string, vars ...*matfile.Variable) {
	t.Helper()

	var buf bytes.Buffer
	if err := matfile.Write(&buf, vars...); err != nil {
		t.Fatalf("encode mat file: %v", err)
	}
	WriteBytes(t, path, buf.Bytes())
}

// WriteMatrixMAT writes a MAT file with a single double matrix variable.
func WriteMatrixMAT(t testing.TB, path, name string, m mat.Matrix) {
	t.Helper()
	WriteMAT(t, path, matfile.NewDouble(name, m))
}

// MustEqualMatrix fails the test when got and want differ in shape or value.
func MustEqualMatrix(t testing.TB, got, want mat.Matrix) {
	t.Helper()

	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Fatalf("matrix shape = %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	if !mat.Equal(got, want) {
		t.Fatalf("matrix mismatch:\ngot  %v\nwant %v", fmt.Sprint(mat.Formatted(got)), fmt.Sprint(mat.Formatted(want)))
	}
}
