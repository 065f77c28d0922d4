// Package instrument opens instrument recordings and exposes their named
// arrays as gonum matrices, regardless of whether the file is a Level 5 MAT
// file or an HDF5 based MATLAB 7.3 file.
package instrument
