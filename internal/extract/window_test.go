package extract_test

import (
	"errors"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/extract"
	"swextract/internal/faults"
	"swextract/internal/unit"
)

// fiveColumns is a 2x5 matrix whose cells encode their column and row.
func fiveColumns() *mat.Dense {
	return mat.NewDense(2, 5, []float64{
		0, 10, 20, 30, 40,
		1, 11, 21, 31, 41,
	})
}

func TestWindowFlattensColumnsInOrder(t *testing.T) {
	row, ok := extract.Window(fiveColumns(), unit.IndexPair{Code: 1, Start: 2})
	if !ok {
		t.Fatal("expected window to fit")
	}
	want := []float64{1, 10, 11, 20, 21, 30, 31}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("row = %v, want %v", row, want)
	}
}

func TestWindowBounds(t *testing.T) {
	m := fiveColumns()
	cases := []struct {
		start int
		fits  bool
	}{
		{start: 0, fits: false},
		{start: 1, fits: true},
		{start: 3, fits: true},
		{start: 4, fits: false},
		{start: 5, fits: false},
		{start: -2, fits: false},
	}
	for _, tc := range cases {
		if _, ok := extract.Window(m, unit.IndexPair{Start: tc.start}); ok != tc.fits {
			t.Fatalf("start %d: fits=%v, want %v", tc.start, ok, tc.fits)
		}
	}
}

func TestRowsSkipsOutOfRangeAndKeepsOrder(t *testing.T) {
	pairs := []unit.IndexPair{
		{Code: 1, Start: 2},
		{Code: 1, Start: 4},
		{Code: 7, Start: 1},
		{Code: 1, Start: 2},
	}
	out, skips := extract.Rows(fiveColumns(), pairs)
	if out == nil {
		t.Fatal("expected rows")
	}
	n, width := out.Dims()
	if n != 3 || width != extract.RowWidth(2) {
		t.Fatalf("dims = %dx%d", n, width)
	}
	if got := out.RawRowView(1); !reflect.DeepEqual(got, []float64{7, 0, 1, 10, 11, 20, 21}) {
		t.Fatalf("second row = %v", got)
	}
	if !reflect.DeepEqual(out.RawRowView(0), out.RawRowView(2)) {
		t.Fatal("duplicate pairs should produce identical rows")
	}

	if len(skips) != 1 || skips[0].Position != 1 || skips[0].Pair.Start != 4 || skips[0].Columns != 5 {
		t.Fatalf("unexpected skips %+v", skips)
	}
	if !errors.Is(skips[0], faults.ErrIndexOutOfRange) {
		t.Fatal("skip should match ErrIndexOutOfRange")
	}
}

func TestRowsEmpty(t *testing.T) {
	out, skips := extract.Rows(fiveColumns(), nil)
	if out != nil || len(skips) != 0 {
		t.Fatalf("expected nothing, got %v %v", out, skips)
	}
	out, skips = extract.Rows(fiveColumns(), []unit.IndexPair{{Code: 1, Start: 4}, {Code: 2, Start: 9}})
	if out != nil || len(skips) != 2 {
		t.Fatalf("expected two skips and no rows, got %v %v", out, skips)
	}
}

func TestRowWidthIsUniform(t *testing.T) {
	m := mat.NewDense(4, 10, nil)
	pairs := make([]unit.IndexPair, 0, 12)
	for start := -1; start <= 10; start++ {
		pairs = append(pairs, unit.IndexPair{Code: 3, Start: start})
	}
	out, skips := extract.Rows(m, pairs)
	n, width := out.Dims()
	if width != 13 {
		t.Fatalf("width = %d, want 13", width)
	}
	if n+len(skips) != len(pairs) || n != 8 {
		t.Fatalf("rows=%d skips=%d", n, len(skips))
	}
}
