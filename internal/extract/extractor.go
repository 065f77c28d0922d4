package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/config"
	"swextract/internal/faults"
	"swextract/internal/h5store"
	"swextract/internal/instrument"
	"swextract/internal/logging"
	"swextract/internal/unit"
)

// Result describes one extraction.
type Result struct {
	Unit       unit.ID
	OutputPath string
	Rows       int
	Width      int
	Skipped    []Skip
	// Columns is the column count of the source matrix.
	Columns int
}

// Extractor pulls annotated windows out of instrument matrices and writes them
// to HDF5.
type Extractor struct {
	VariableName string
	DatasetName  string
	OutputDir    string
	// Describe logs, at info level, the variables of every instrument file
	// and a summary of each extracted row.
	Describe bool
	Logger   *slog.Logger
}

// New builds an Extractor from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Extractor {
	return &Extractor{
		VariableName: cfg.Instrument.Variable,
		DatasetName:  cfg.Output.Dataset,
		OutputDir:    cfg.Paths.OutputDir,
		Describe:     cfg.Instrument.Describe,
		Logger:       logging.NewComponentLogger(logger, "extract"),
	}
}

// Extract reads the configured variable from matrixPath, extracts one row per
// usable pair and writes them as a single dataset named after the unit found
// in matrixPath. When no row survives nothing is written and the error
// matches faults.ErrEmptyResult.
func (e *Extractor) Extract(ctx context.Context, matrixPath string, pairs []unit.IndexPair) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	id, err := unit.ParseMatrixName(matrixPath)
	if err != nil {
		return Result{}, err
	}
	result := Result{Unit: id}
	logger := logging.WithUnit(e.logger(), id)

	src, err := instrument.Open(matrixPath)
	if err != nil {
		return result, err
	}
	defer src.Close()

	if e.Describe {
		for _, v := range src.Variables() {
			logger.Info("instrument variable",
				logging.String(logging.FieldFile, filepath.Base(matrixPath)),
				logging.String("name", v.Name),
				logging.String("class", v.Kind),
				logging.String("shape", v.Shape()),
			)
		}
	}

	m, err := src.Matrix(e.VariableName)
	if err != nil {
		return result, fmt.Errorf("%s: load %s from %s: %w", id, e.VariableName, filepath.Base(matrixPath), err)
	}
	rows, cols := m.Dims()
	result.Columns = cols

	out, skips := Rows(m, pairs)
	result.Skipped = skips
	for _, skip := range skips {
		logging.WarnWithContext(logger, "index pair skipped", "index_out_of_range",
			logging.Int("code", skip.Pair.Code),
			logging.Int("start", skip.Pair.Start),
			logging.Int("columns", skip.Columns),
			logging.String(logging.FieldErrorHint, "annotation start lies outside the recording"),
			logging.String(logging.FieldImpact, "window dropped from output"),
		)
	}
	if out == nil {
		return result, faults.Wrap(faults.ErrEmptyResult, id.String(), "extract",
			fmt.Sprintf("0 of %d pairs fit a %dx%d matrix", len(pairs), rows, cols), nil)
	}

	n, width := out.Dims()
	if e.Describe {
		e.describeRows(logger, out)
	}

	path := filepath.Join(e.OutputDir, id.OutputFileName())
	if err := h5store.WriteDataset(path, e.DatasetName, out); err != nil {
		return result, err
	}
	result.OutputPath = path
	result.Rows = n
	result.Width = width

	logger.Info("dataset written",
		logging.String(logging.FieldFile, path),
		logging.String("dataset", e.DatasetName),
		logging.Int("rows", n),
		logging.Int("width", width),
		logging.Int("skipped", len(skips)),
	)
	return result, nil
}

func (e *Extractor) describeRows(logger *slog.Logger, out *mat.Dense) {
	n, _ := out.Dims()
	for i := range n {
		row := out.RawRowView(i)
		logger.Info("row extracted",
			logging.Int("row", i),
			logging.Int("code", int(row[0])),
			logging.Float64("first", row[1]),
			logging.Float64("last", row[len(row)-1]),
		)
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

// Verify reads dataset back from an extracted file without modifying it.
func Verify(path, dataset string) (*mat.Dense, error) {
	return h5store.ReadDataset(path, dataset)
}
