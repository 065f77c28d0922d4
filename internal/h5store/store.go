package h5store

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"

	"swextract/internal/faults"
	"swextract/internal/fileutil"
)

// DatasetInfo describes one dataset at the root of a file.
type DatasetInfo struct {
	Name  string
	Class string
	Dims  []int
}

// File is an HDF5 file opened read-only.
type File struct {
	path string
	file *hdf5.File
}

// Open opens path read-only.
func Open(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open hdf5", path, err)
	}
	ok, err := IsHDF5(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open hdf5", path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrIO, "", "open hdf5", fmt.Sprintf("%s is not an HDF5 file", path), nil)
	}
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open hdf5", path, err)
	}
	return &File{path: path, file: f}, nil
}

// Path returns the file's location.
func (f *File) Path() string { return f.path }

// Close releases the file handle.
func (f *File) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Has reports whether a dataset called name exists at the root.
func (f *File) Has(name string) bool {
	if name == "" || !f.file.LinkExists(name) {
		return false
	}
	i, found := f.indexOf(name)
	if !found {
		return false
	}
	kind, err := f.file.ObjectTypeByIndex(i)
	return err == nil && kind == hdf5.H5G_DATASET
}

// indexOf finds name among the root's direct members. Nested paths are never
// found.
func (f *File) indexOf(name string) (uint, bool) {
	n, err := f.file.NumObjects()
	if err != nil {
		return 0, false
	}
	for i := range n {
		if objName, err := f.file.ObjectNameByIndex(i); err == nil && objName == name {
			return i, true
		}
	}
	return 0, false
}

// Datasets lists the root datasets in storage order. Groups such as the
// #refs# group of MATLAB files are skipped.
func (f *File) Datasets() ([]DatasetInfo, error) {
	n, err := f.file.NumObjects()
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "list datasets", f.path, err)
	}
	infos := make([]DatasetInfo, 0, n)
	for i := range n {
		kind, err := f.file.ObjectTypeByIndex(i)
		if err != nil || kind != hdf5.H5G_DATASET {
			continue
		}
		name, err := f.file.ObjectNameByIndex(i)
		if err != nil {
			return nil, faults.Wrap(faults.ErrIO, "", "list datasets", f.path, err)
		}
		info, err := f.describe(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (f *File) describe(name string) (DatasetInfo, error) {
	dset, err := f.file.OpenDataset(name)
	if err != nil {
		return DatasetInfo{}, faults.Wrap(faults.ErrIO, "", "open dataset", name, err)
	}
	defer dset.Close()

	dims, err := extent(dset)
	if err != nil {
		return DatasetInfo{}, faults.Wrap(faults.ErrIO, "", "dataset extent", name, err)
	}
	class := "unknown"
	if dtype, err := dset.Datatype(); err == nil {
		class = className(dtype)
		dtype.Close()
	}
	return DatasetInfo{Name: name, Class: class, Dims: dims}, nil
}

// Matrix reads a 2-D numeric dataset as float64, as stored: HDF5 dimension 0 is
// the row count.
func (f *File) Matrix(name string) (*mat.Dense, error) {
	if !f.Has(name) {
		return nil, faults.Wrap(faults.ErrNotFound, "", "read dataset", fmt.Sprintf("%s has no dataset %q", f.path, name), nil)
	}
	dset, err := f.file.OpenDataset(name)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "open dataset", name, err)
	}
	defer dset.Close()

	dims, err := extent(dset)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "dataset extent", name, err)
	}
	if len(dims) != 2 || dims[0] == 0 || dims[1] == 0 {
		return nil, faults.Wrap(faults.ErrShape, "", "read dataset", fmt.Sprintf("%s has shape %v", name, dims), nil)
	}

	dtype, err := dset.Datatype()
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "dataset type", name, err)
	}
	defer dtype.Close()
	rows, cols := dims[0], dims[1]
	data := make([]float64, rows*cols)
	switch dtype.Class() {
	case hdf5.T_FLOAT:
		switch dtype.Size() {
		case 8:
			err = dset.Read(&data[0])
		case 4:
			narrow := make([]float32, rows*cols)
			if err = dset.Read(&narrow[0]); err == nil {
				for i, v := range narrow {
					data[i] = float64(v)
				}
			}
		default:
			return nil, faults.Wrap(faults.ErrShape, "", "read dataset", fmt.Sprintf("%s uses %d byte floats", name, dtype.Size()), nil)
		}
	case hdf5.T_INTEGER:
		// The library converts stored integers to the native double memory type.
		err = dset.Read(&data[0])
	default:
		return nil, faults.Wrap(faults.ErrShape, "", "read dataset", fmt.Sprintf("%s holds %s values", name, className(dtype)), nil)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "read dataset", name, err)
	}
	return mat.NewDense(rows, cols, data), nil
}

func extent(dset *hdf5.Dataset) ([]int, error) {
	space := dset.Space()
	if space == nil {
		return nil, errors.New("no dataspace")
	}
	defer space.Close()
	raw, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	dims := make([]int, len(raw))
	for i, d := range raw {
		dims[i] = int(d)
	}
	return dims, nil
}

func className(dtype *hdf5.Datatype) string {
	switch dtype.Class() {
	case hdf5.T_FLOAT:
		return fmt.Sprintf("float%d", 8*dtype.Size())
	case hdf5.T_INTEGER:
		return fmt.Sprintf("int%d", 8*dtype.Size())
	case hdf5.T_STRING:
		return "string"
	case hdf5.T_COMPOUND:
		return "compound"
	case hdf5.T_REFERENCE:
		return "reference"
	default:
		return "other"
	}
}

// ReadDataset opens path and returns the named dataset. A missing file is an
// I/O error; a missing dataset is ErrNotFound.
func ReadDataset(path, name string) (*mat.Dense, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Matrix(name)
}

// WriteDataset creates a new file at path holding m as a float64 dataset.
// The file is built beside path and renamed into place, so a failed write
// never leaves a partial file.
func WriteDataset(path, name string, m mat.Matrix) error {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return faults.Wrap(faults.ErrEmptyResult, "", "write dataset", path, nil)
	}
	data := make([]float64, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			data = append(data, m.At(i, j))
		}
	}

	err := fileutil.Commit(path, func(tmp string) error {
		return create(tmp, name, []uint{uint(rows), uint(cols)}, data)
	})
	if err != nil {
		return faults.Wrap(faults.ErrIO, "", "write dataset", path, err)
	}
	return nil
}

func create(path, name string, dims []uint, data []float64) error {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("create dataspace: %w", err)
	}
	defer space.Close()

	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("create dataset %q: %w", name, err)
	}
	defer dset.Close()

	if err := dset.Write(&data[0]); err != nil {
		return fmt.Errorf("write dataset %q: %w", name, err)
	}
	if err := dset.Close(); err != nil {
		return fmt.Errorf("close dataset %q: %w", name, err)
	}
	return f.Close()
}
