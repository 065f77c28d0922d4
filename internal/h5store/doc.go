// Package h5store reads and writes 2-D float datasets in HDF5 files through
// gonum.org/v1/hdf5.
//
// Writes build a fresh file beside the destination and rename it into place.
// Reads also serve MATLAB 7.3 MAT files, which are HDF5 containers.
package h5store
