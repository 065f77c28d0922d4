package matfile

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"gonum.org/v1/gonum/mat"

	"swextract/internal/faults"
)

// Variable is one named array from a MAT file. Numeric data is kept in
// MATLAB's column-major order.
type Variable struct {
	Name    string
	Class   Class
	Dims    []int
	Complex bool
	Logical bool
	Global  bool
	Real    []float64
	Imag    []float64
	// Text holds the contents of char arrays.
	Text string
}

// Kind describes the variable the way MATLAB's whos does.
func (v *Variable) Kind() string {
	switch {
	case v.Logical:
		return "logical"
	case v.Complex:
		return v.Class.String() + " (complex)"
	default:
		return v.Class.String()
	}
}

// Shape renders the dimensions as rows x cols x ...
func (v *Variable) Shape() string {
	parts := make([]string, len(v.Dims))
	for i, d := range v.Dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}

// Len returns the number of elements implied by the dimensions.
func (v *Variable) Len() int {
	if len(v.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// Matrix converts a real 2-D numeric variable into a row-major dense matrix.
func (v *Variable) Matrix() (*mat.Dense, error) {
	if !v.Class.Numeric() {
		return nil, faults.Wrap(faults.ErrShape, "", "matrix", fmt.Sprintf("%s is %s, not numeric", v.Name, v.Class), nil)
	}
	if v.Complex {
		return nil, faults.Wrap(faults.ErrShape, "", "matrix", fmt.Sprintf("%s is complex", v.Name), nil)
	}
	if len(v.Dims) != 2 {
		return nil, faults.Wrap(faults.ErrShape, "", "matrix", fmt.Sprintf("%s has %d dimensions", v.Name, len(v.Dims)), nil)
	}
	rows, cols := v.Dims[0], v.Dims[1]
	if rows <= 0 || cols <= 0 {
		return nil, faults.Wrap(faults.ErrShape, "", "matrix", fmt.Sprintf("%s is empty (%s)", v.Name, v.Shape()), nil)
	}
	if len(v.Real) != rows*cols {
		return nil, faults.Wrap(faults.ErrShape, "", "matrix", fmt.Sprintf("%s holds %d values for %s", v.Name, len(v.Real), v.Shape()), nil)
	}

	data := make([]float64, rows*cols)
	for j := range cols {
		for i := range rows {
			data[i*cols+j] = v.Real[j*rows+i]
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

// NewDouble builds a double variable from m.
func NewDouble(name string, m mat.Matrix) *Variable {
	rows, cols := m.Dims()
	values := make([]float64, 0, rows*cols)
	for j := range cols {
		for i := range rows {
			values = append(values, m.At(i, j))
		}
	}
	return &Variable{Name: name, Class: ClassDouble, Dims: []int{rows, cols}, Real: values}
}

// NewChar builds a 1xN char variable.
func NewChar(name, text string) *Variable {
	return &Variable{Name: name, Class: ClassChar, Dims: []int{1, len(utf16.Encode([]rune(text)))}, Text: text}
}
