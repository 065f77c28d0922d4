package extract

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/faults"
	"swextract/internal/unit"
)

// WindowWidth is the number of consecutive matrix columns each pair selects.
const WindowWidth = 3

// Skip records an index pair whose window does not fit inside the matrix.
type Skip struct {
	Pair unit.IndexPair
	// Position is the pair's index in the input sequence.
	Position int
	Columns  int
}

func (s Skip) Error() string {
	return fmt.Sprintf("pair %d %s: columns %d..%d outside 1..%d",
		s.Position, s.Pair, s.Pair.Start, s.Pair.Start+WindowWidth-1, s.Columns)
}

// Is matches faults.ErrIndexOutOfRange.
func (s Skip) Is(target error) bool {
	return target == faults.ErrIndexOutOfRange
}

// RowWidth returns the length of an extracted row for a matrix with the given
// number of rows.
func RowWidth(rows int) int {
	return 1 + WindowWidth*rows
}

// Window builds one extracted row: the pair's code followed by the matrix
// columns Start-1, Start and Start+1 (zero-based), each read top to bottom.
func Window(m mat.Matrix, pair unit.IndexPair) ([]float64, bool) {
	rows, cols := m.Dims()
	idx := pair.Offset()
	if idx < 0 || idx+WindowWidth-1 >= cols {
		return nil, false
	}

	row := make([]float64, 1, RowWidth(rows))
	row[0] = float64(pair.Code)
	for j := idx; j < idx+WindowWidth; j++ {
		row = append(row, mat.Col(nil, j, m)...)
	}
	return row, true
}

// Rows folds pairs into the stacked output matrix. Pairs whose window falls
// outside m are returned as skips and do not stop the fold. The matrix is nil
// when no pair produced a row.
func Rows(m mat.Matrix, pairs []unit.IndexPair) (*mat.Dense, []Skip) {
	rows, cols := m.Dims()
	width := RowWidth(rows)

	var data []float64
	var skips []Skip
	n := 0
	for i, pair := range pairs {
		row, ok := Window(m, pair)
		if !ok {
			skips = append(skips, Skip{Pair: pair, Position: i, Columns: cols})
			continue
		}
		data = append(data, row...)
		n++
	}
	if n == 0 {
		return nil, skips
	}
	return mat.NewDense(n, width, data), skips
}
