package annotation

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"swextract/internal/faults"
	"swextract/internal/logging"
	"swextract/internal/unit"
)

// DefaultBoundaryGap is the boundary difference that selects an observation.
const DefaultBoundaryGap = 2

// Columns holds the zero-based positions of the columns the processor reads.
type Columns struct {
	Start int
	End   int
	Label int
}

// DefaultColumns returns the positions used by the human review exports.
func DefaultColumns() Columns {
	return Columns{Start: 2, End: 3, Label: 8}
}

func (c Columns) widest() int {
	return max(c.Start, c.End, c.Label)
}

// Observation is one projected annotation row. Empty boundary cells are NaN.
type Observation struct {
	Line  int
	Start float64
	End   float64
	Label string
	Code  int
}

// Project reads the boundary and label columns of every row. A row that is
// too short is malformed input; a boundary cell that is not a number is a
// parse error.
func (t *Table) Project(cols Columns) ([]Observation, error) {
	if cols.Start < 0 || cols.End < 0 || cols.Label < 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "", "project columns", fmt.Sprintf("negative column in %+v", cols), nil)
	}
	need := cols.widest()
	observations := make([]Observation, 0, t.Len())
	for i, row := range t.Rows {
		line := t.Lines[i]
		if need >= len(row) {
			return nil, faults.Wrap(faults.ErrIO, "", "project columns",
				fmt.Sprintf("line %d has %d fields, column %d required", line, len(row), need), nil)
		}
		start, err := parseBoundary(row[cols.Start])
		if err != nil {
			return nil, boundaryError(t.ColumnName(cols.Start), line, err)
		}
		end, err := parseBoundary(row[cols.End])
		if err != nil {
			return nil, boundaryError(t.ColumnName(cols.End), line, err)
		}
		observations = append(observations, Observation{
			Line:  line,
			Start: start,
			End:   end,
			Label: strings.TrimSpace(row[cols.Label]),
		})
	}
	return observations, nil
}

func parseBoundary(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

func boundaryError(column string, line int, err error) error {
	if column == "" {
		column = "boundary"
	}
	return faults.Wrap(faults.ErrParse, "", "project columns", fmt.Sprintf("%s on line %d", column, line), err)
}

// FilterByBoundaryGap keeps observations whose boundaries differ by exactly
// gap. Observations with a missing boundary never match.
func FilterByBoundaryGap(observations []Observation, gap float64) []Observation {
	kept := make([]Observation, 0, len(observations))
	for _, obs := range observations {
		if math.Abs(obs.End-obs.Start) == gap {
			kept = append(kept, obs)
		}
	}
	return kept
}

// ToIndexPairs projects (code, start) pairs in observation order. Start
// boundaries must be whole numbers.
func ToIndexPairs(observations []Observation) ([]unit.IndexPair, error) {
	pairs := make([]unit.IndexPair, 0, len(observations))
	for _, obs := range observations {
		if obs.Start != math.Trunc(obs.Start) || math.IsInf(obs.Start, 0) {
			return nil, faults.Wrap(faults.ErrParse, "", "index pairs",
				fmt.Sprintf("start %v on line %d is not a column index", obs.Start, obs.Line), nil)
		}
		pairs = append(pairs, unit.IndexPair{Code: obs.Code, Start: int(obs.Start)})
	}
	return pairs, nil
}

// Result summarizes one processed annotation file.
type Result struct {
	Pairs    []unit.IndexPair
	RowsRead int
	RowsKept int
}

// Processor turns annotation files into index pairs.
type Processor struct {
	Columns Columns
	Gap     float64
	Codes   CodeTable
	Logger  *slog.Logger
}

// NewProcessor builds a processor with the fixed direction code table.
func NewProcessor(cols Columns, gap float64, logger *slog.Logger) *Processor {
	return &Processor{
		Columns: cols,
		Gap:     gap,
		Codes:   DirectionCodes(),
		Logger:  logging.NewComponentLogger(logger, "annotation"),
	}
}

// Process loads path, remaps every direction label, applies the boundary gap
// filter and returns the resulting index pairs.
func (p *Processor) Process(path string) (Result, error) {
	table, err := LoadTable(path)
	if err != nil {
		return Result{}, err
	}

	observations, err := table.Project(p.Columns)
	if err != nil {
		return Result{}, err
	}

	labels := make([]string, len(observations))
	for i, obs := range observations {
		labels[i] = obs.Label
	}
	codes, err := p.codes().Remap(labels)
	if err != nil {
		var unmapped *UnmappedValueError
		if errors.As(err, &unmapped) && unmapped.Position < len(observations) {
			unmapped.Line = observations[unmapped.Position].Line
		}
		return Result{}, err
	}
	for i := range observations {
		observations[i].Code = codes[i]
	}

	kept := FilterByBoundaryGap(observations, p.Gap)
	pairs, err := ToIndexPairs(kept)
	if err != nil {
		return Result{}, err
	}

	if p.Logger != nil {
		p.Logger.Debug("annotation processed",
			logging.String(logging.FieldFile, path),
			logging.Int("rows_read", len(observations)),
			logging.Int("rows_kept", len(kept)),
			logging.Float64("boundary_gap", p.Gap),
		)
	}

	return Result{Pairs: pairs, RowsRead: len(observations), RowsKept: len(kept)}, nil
}

func (p *Processor) codes() CodeTable {
	if p.Codes == nil {
		return directionCodes
	}
	return p.Codes
}
