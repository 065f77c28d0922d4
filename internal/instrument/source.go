package instrument

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/faults"
	"swextract/internal/h5store"
	"swextract/internal/matfile"
)

// Variable describes one named array inside an instrument file.
type Variable struct {
	Name string
	Kind string
	Dims []int
}

// Shape renders the dimensions as rows x cols.
func (v Variable) Shape() string {
	parts := make([]string, len(v.Dims))
	for i, d := range v.Dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}

// Source is an opened instrument recording.
type Source interface {
	// Format names the container, for example "mat5" or "mat73".
	Format() string
	Variables() []Variable
	// Matrix returns the named variable as a rows x cols matrix. A missing
	// variable is faults.ErrVariableNotFound; anything other than a real 2-D
	// numeric array is faults.ErrShape.
	Matrix(name string) (*mat.Dense, error)
	Close() error
}

// Open sniffs path and returns the matching Source.
func Open(path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open instrument", path, err)
	}

	isHDF5, err := h5store.IsHDF5(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open instrument", path, err)
	}
	if isHDF5 {
		return openHDF5(path)
	}

	file, err := matfile.Open(path)
	if errors.Is(err, matfile.ErrHDF5) {
		return openHDF5(path)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open instrument", path, err)
	}
	return &mat5Source{path: path, file: file}, nil
}

type mat5Source struct {
	path string
	file *matfile.File
}

func (s *mat5Source) Format() string { return "mat5" }

func (s *mat5Source) Variables() []Variable {
	vars := make([]Variable, 0, len(s.file.Variables))
	for _, v := range s.file.Variables {
		vars = append(vars, Variable{Name: v.Name, Kind: v.Kind(), Dims: append([]int(nil), v.Dims...)})
	}
	return vars
}

func (s *mat5Source) Matrix(name string) (*mat.Dense, error) {
	v, ok := s.file.Lookup(name)
	if !ok {
		return nil, notFound(s.path, name)
	}
	return v.Matrix()
}

func (s *mat5Source) Close() error {
	s.file = nil
	return nil
}

// hdf5Source reads MATLAB 7.3 files. MATLAB writes column-major data, so a
// rows x cols variable is stored with HDF5 dimensions cols x rows.
type hdf5Source struct {
	file *h5store.File
	vars []Variable
}

func openHDF5(path string) (Source, error) {
	f, err := h5store.Open(path)
	if err != nil {
		return nil, err
	}
	infos, err := f.Datasets()
	if err != nil {
		f.Close()
		return nil, err
	}
	vars := make([]Variable, 0, len(infos))
	for _, info := range infos {
		dims := make([]int, len(info.Dims))
		for i, d := range info.Dims {
			dims[len(dims)-1-i] = d
		}
		vars = append(vars, Variable{Name: info.Name, Kind: info.Class, Dims: dims})
	}
	return &hdf5Source{file: f, vars: vars}, nil
}

func (s *hdf5Source) Format() string { return "mat73" }

func (s *hdf5Source) Variables() []Variable { return s.vars }

func (s *hdf5Source) Matrix(name string) (*mat.Dense, error) {
	if !s.file.Has(name) {
		return nil, notFound(s.file.Path(), name)
	}
	stored, err := s.file.Matrix(name)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(stored.T()), nil
}

func (s *hdf5Source) Close() error {
	return s.file.Close()
}

func notFound(path, name string) error {
	return faults.Wrap(faults.ErrVariableNotFound, "", "lookup variable", fmt.Sprintf("%s has no variable %q", path, name), nil)
}
