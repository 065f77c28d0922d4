// Package matfile reads and writes MATLAB Level 5 MAT files.
//
// Decoding covers every numeric data type, zlib compressed elements, sparse
// arrays (expanded to dense storage) and char arrays; cell, struct and
// object arrays are listed with their class and dimensions only. Version 7.3
// files are HDF5 containers and are rejected with ErrHDF5 so callers can
// route them to an HDF5 reader.
package matfile
