package h5store_test

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"

	"swextract/internal/faults"
	"swextract/internal/h5store"
	"swextract/internal/testsupport"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.h5")
	want := mat.NewDense(2, 4, []float64{
		1, 0.5, -2, 1e-9,
		3, 4, 5, 6,
	})

	if err := h5store.WriteDataset(path, "swSig_1Hz_extracted", want); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	got, err := h5store.ReadDataset(path, "swSig_1Hz_extracted")
	if err != nil {
		t.Fatalf("ReadDataset: %v", err)
	}
	testsupport.MustEqualMatrix(t, got, want)

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(entries))
	}
}

func TestDatasetsListsShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.h5")
	if err := h5store.WriteDataset(path, "rows", testsupport.Sequence(3, 7)); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}

	f, err := h5store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	infos, err := f.Datasets()
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "rows" || infos[0].Class != "float64" {
		t.Fatalf("unexpected datasets %+v", infos)
	}
	if infos[0].Dims[0] != 3 || infos[0].Dims[1] != 7 {
		t.Fatalf("unexpected dims %v", infos[0].Dims)
	}
	if !f.Has("rows") || f.Has("missing") {
		t.Fatal("unexpected Has results")
	}
}

func TestReadMissingDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.h5")
	if err := h5store.WriteDataset(path, "a", testsupport.Sequence(1, 1)); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	if _, err := h5store.ReadDataset(path, "b"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := h5store.ReadDataset(filepath.Join(t.TempDir(), "none.h5"), "a")
	if !errors.Is(err, faults.ErrIO) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected io error wrapping not-exist, got %v", err)
	}
}

func TestWriteEmptyMatrixRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.h5")
	if err := h5store.WriteDataset(path, "a", &mat.Dense{}); !errors.Is(err, faults.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected no file to be created")
	}
}

func TestIsHDF5(t *testing.T) {
	dir := t.TempDir()
	h5 := filepath.Join(dir, "out.h5")
	if err := h5store.WriteDataset(h5, "a", testsupport.Sequence(1, 2)); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	if ok, err := h5store.IsHDF5(h5); err != nil || !ok {
		t.Fatalf("expected hdf5 file, ok=%v err=%v", ok, err)
	}

	mat5 := filepath.Join(dir, "x.mat")
	testsupport.WriteMatrixMAT(t, mat5, "x", testsupport.Sequence(2, 2))
	if ok, err := h5store.IsHDF5(mat5); err != nil || ok {
		t.Fatalf("expected level 5 mat file not to be hdf5, ok=%v err=%v", ok, err)
	}
}

// writeMixedFile builds a file holding a root int32 dataset "ints" and a
// group "g" with a float64 dataset "d".
func writeMixedFile(t *testing.T, path string) {
	t.Helper()
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	defer f.Close()

	space, err := hdf5.CreateSimpleDataspace([]uint{2, 3}, nil)
	if err != nil {
		t.Fatalf("CreateSimpleDataspace: %v", err)
	}
	defer space.Close()

	ints, err := f.CreateDataset("ints", hdf5.T_NATIVE_INT32, space)
	if err != nil {
		t.Fatalf("CreateDataset ints: %v", err)
	}
	values := []int32{1, -2, 3, 40, 50, -60}
	if err := ints.Write(&values[0]); err != nil {
		t.Fatalf("write ints: %v", err)
	}
	ints.Close()

	group, err := f.CreateGroup("g")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	defer group.Close()
	nested, err := group.CreateDataset("d", hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		t.Fatalf("CreateDataset d: %v", err)
	}
	floats := []float64{1, 2, 3, 4, 5, 6}
	if err := nested.Write(&floats[0]); err != nil {
		t.Fatalf("write d: %v", err)
	}
	nested.Close()
}

func TestReadIntegerDatasetWidensToFloat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.h5")
	writeMixedFile(t, path)

	got, err := h5store.ReadDataset(path, "ints")
	if err != nil {
		t.Fatalf("ReadDataset: %v", err)
	}
	testsupport.MustEqualMatrix(t, got, mat.NewDense(2, 3, []float64{1, -2, 3, 40, 50, -60}))
}

func TestHasIgnoresNestedPathsAndGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.h5")
	writeMixedFile(t, path)

	f, err := h5store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if !f.Has("ints") {
		t.Fatal("expected root dataset to be found")
	}
	if f.Has("g/d") || f.Has("g") {
		t.Fatal("nested paths and groups are not root datasets")
	}
	if _, err := f.Matrix("g/d"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for nested path, got %v", err)
	}
}

func TestOpenKeepsSniffError(t *testing.T) {
	dir := t.TempDir()
	_, err := h5store.Open(dir)
	if !errors.Is(err, faults.ErrIO) || !errors.Is(err, syscall.EISDIR) {
		t.Fatalf("expected io error wrapping EISDIR, got %v", err)
	}
}
