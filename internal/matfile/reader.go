package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf16"
)

var (
	// ErrFormat reports data that is not a readable Level 5 MAT file.
	ErrFormat = errors.New("matfile: invalid format")
	// ErrHDF5 reports a MATLAB 7.3 file, which is an HDF5 container.
	ErrHDF5 = errors.New("matfile: version 7.3 files are HDF5 containers")
)

// File is a decoded Level 5 MAT file.
type File struct {
	Description string
	Version     uint16
	Order       binary.ByteOrder
	Variables   []*Variable
}

// Lookup returns the variable called name.
func (f *File) Lookup(name string) (*Variable, bool) {
	for _, v := range f.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Open reads and decodes the MAT file at path.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Read decodes a MAT file from r.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a complete Level 5 MAT file held in memory.
func Decode(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrFormat, len(data))
	}

	var order binary.ByteOrder
	switch string(data[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: missing endian indicator", ErrFormat)
	}

	file := &File{
		Description: strings.TrimRight(string(data[:headerTextSize]), " \x00"),
		Version:     order.Uint16(data[124:126]),
		Order:       order,
	}
	if file.Version == version73 {
		return nil, ErrHDF5
	}
	if file.Version != version5 {
		return nil, fmt.Errorf("%w: unsupported version 0x%04x", ErrFormat, file.Version)
	}

	d := decoder{order: order}
	vars, err := d.elements(data[headerSize:])
	if err != nil {
		return nil, err
	}
	file.Variables = vars
	return file, nil
}

type decoder struct {
	order binary.ByteOrder
}

type element struct {
	typ     uint32
	payload []byte
}

// next splits the first data element off buf and returns the remainder.
func (d decoder) next(buf []byte) (element, []byte, error) {
	if len(buf) < 8 {
		return element{}, nil, fmt.Errorf("%w: truncated tag", ErrFormat)
	}
	first := d.order.Uint32(buf[:4])
	if size := int(first >> 16); size != 0 {
		if size > 4 {
			return element{}, nil, fmt.Errorf("%w: small element of %d bytes", ErrFormat, size)
		}
		return element{typ: first & 0xffff, payload: buf[4 : 4+size]}, buf[8:], nil
	}

	size := int(d.order.Uint32(buf[4:8]))
	if size < 0 || 8+size > len(buf) {
		return element{}, nil, fmt.Errorf("%w: element of %d bytes overruns data", ErrFormat, size)
	}
	el := element{typ: first, payload: buf[8 : 8+size]}
	end := 8 + size
	if first != miCOMPRESSED {
		end = min(8+pad8(size), len(buf))
	}
	return el, buf[end:], nil
}

func (d decoder) elements(buf []byte) ([]*Variable, error) {
	var vars []*Variable
	for len(buf) >= 8 {
		el, rest, err := d.next(buf)
		if err != nil {
			return nil, err
		}
		buf = rest

		switch el.typ {
		case miCOMPRESSED:
			inflated, err := inflate(el.payload)
			if err != nil {
				return nil, err
			}
			inner, err := d.elements(inflated)
			if err != nil {
				return nil, err
			}
			vars = append(vars, inner...)
		case miMATRIX:
			v, err := d.matrix(el.payload)
			if err != nil {
				return nil, err
			}
			vars = append(vars, v)
		}
	}
	return vars, nil
}

func inflate(payload []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: compressed element: %w", ErrFormat, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: compressed element: %w", ErrFormat, err)
	}
	return out, nil
}

func (d decoder) matrix(buf []byte) (*Variable, error) {
	v := &Variable{}
	if len(buf) == 0 {
		// Empty miMATRIX elements appear as placeholders inside cells.
		return v, nil
	}

	flags, buf, err := d.next(buf)
	if err != nil {
		return nil, err
	}
	if flags.typ != miUINT32 || len(flags.payload) < 8 {
		return nil, fmt.Errorf("%w: array flags", ErrFormat)
	}
	word := d.order.Uint32(flags.payload[:4])
	nzmax := int(d.order.Uint32(flags.payload[4:8]))
	v.Class = Class(word & 0xff)
	v.Complex = word&flagComplex != 0
	v.Global = word&flagGlobal != 0
	v.Logical = word&flagLogical != 0

	dims, buf, err := d.next(buf)
	if err != nil {
		return nil, err
	}
	dimValues, err := d.numbers(dims)
	if err != nil {
		return nil, err
	}
	if v.Dims, err = checkDims(dimValues); err != nil {
		return nil, err
	}

	name, buf, err := d.next(buf)
	if err != nil {
		return nil, err
	}
	v.Name = string(name.payload)

	switch {
	case v.Class == ClassSparse:
		err = d.sparse(v, nzmax, buf)
	case v.Class == ClassChar:
		err = d.char(v, buf)
	case v.Class.Numeric():
		err = d.dense(v, buf)
	}
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	return v, nil
}

// maxElements bounds the element count of one array. Sparse arrays are
// expanded to dense, so their dimensions alone decide the allocation.
const maxElements = 1 << 28

// checkDims converts raw dimension values, rejecting negative, fractional and
// oversized shapes.
func checkDims(values []float64) ([]int, error) {
	dims := make([]int, len(values))
	total := 1
	for i, n := range values {
		if n < 0 || n != math.Trunc(n) || n > maxElements {
			return nil, fmt.Errorf("%w: dimension %v", ErrFormat, n)
		}
		dims[i] = int(n)
		if dims[i] == 0 {
			total = 0
			continue
		}
		if total > maxElements/dims[i] {
			return nil, fmt.Errorf("%w: dimensions %v exceed %d elements", ErrFormat, values, maxElements)
		}
		total *= dims[i]
	}
	return dims, nil
}

func (d decoder) dense(v *Variable, buf []byte) error {
	re, buf, err := d.next(buf)
	if err != nil {
		return err
	}
	if v.Real, err = d.numbers(re); err != nil {
		return err
	}
	if len(v.Real) != v.Len() {
		return fmt.Errorf("%w: %d values for dimensions %s", ErrFormat, len(v.Real), v.Shape())
	}
	if !v.Complex {
		return nil
	}
	im, _, err := d.next(buf)
	if err != nil {
		return err
	}
	v.Imag, err = d.numbers(im)
	return err
}

func (d decoder) sparse(v *Variable, nzmax int, buf []byte) error {
	if len(v.Dims) != 2 {
		return fmt.Errorf("%w: sparse array with %d dimensions", ErrFormat, len(v.Dims))
	}
	rows, cols := v.Dims[0], v.Dims[1]

	irEl, buf, err := d.next(buf)
	if err != nil {
		return err
	}
	jcEl, buf, err := d.next(buf)
	if err != nil {
		return err
	}
	prEl, buf, err := d.next(buf)
	if err != nil {
		return err
	}
	ir, err := d.numbers(irEl)
	if err != nil {
		return err
	}
	jc, err := d.numbers(jcEl)
	if err != nil {
		return err
	}
	pr, err := d.numbers(prEl)
	if err != nil {
		return err
	}
	var pi []float64
	if v.Complex {
		piEl, _, err := d.next(buf)
		if err != nil {
			return err
		}
		if pi, err = d.numbers(piEl); err != nil {
			return err
		}
	}
	if len(jc) != cols+1 || len(ir) < min(nzmax, len(pr)) {
		return fmt.Errorf("%w: sparse index arrays", ErrFormat)
	}
	for j := range cols {
		if jc[j] < 0 || jc[j+1] < jc[j] || int(jc[j+1]) > len(ir) {
			return fmt.Errorf("%w: sparse column pointers", ErrFormat)
		}
	}

	v.Real = make([]float64, rows*cols)
	if v.Complex {
		v.Imag = make([]float64, rows*cols)
	}
	for j := range cols {
		for k := int(jc[j]); k < int(jc[j+1]); k++ {
			if k >= len(ir) || ir[k] < 0 || int(ir[k]) >= rows {
				return fmt.Errorf("%w: sparse index out of range", ErrFormat)
			}
			at := j*rows + int(ir[k])
			value := 1.0
			if k < len(pr) {
				value = pr[k]
			}
			v.Real[at] = value
			if v.Complex && k < len(pi) {
				v.Imag[at] = pi[k]
			}
		}
	}
	return nil
}

func (d decoder) char(v *Variable, buf []byte) error {
	el, _, err := d.next(buf)
	if err != nil {
		return err
	}
	switch el.typ {
	case miUTF8, miINT8, miUINT8:
		v.Text = string(el.payload)
	case miUTF16, miUINT16:
		units := make([]uint16, len(el.payload)/2)
		for i := range units {
			units[i] = d.order.Uint16(el.payload[2*i:])
		}
		v.Text = string(utf16.Decode(units))
	default:
		values, err := d.numbers(el)
		if err != nil {
			return err
		}
		runes := make([]rune, len(values))
		for i, value := range values {
			runes[i] = rune(value)
		}
		v.Text = string(runes)
	}
	return nil
}

// numbers converts a numeric data element into float64 values.
func (d decoder) numbers(el element) ([]float64, error) {
	width := elementWidth(el.typ)
	if width == 0 {
		return nil, fmt.Errorf("%w: data type %d is not numeric", ErrFormat, el.typ)
	}
	if len(el.payload)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes of data type %d", ErrFormat, len(el.payload), el.typ)
	}

	p := el.payload
	out := make([]float64, len(p)/width)
	for i := range out {
		b := p[i*width:]
		switch el.typ {
		case miINT8:
			out[i] = float64(int8(b[0]))
		case miUINT8, miUTF8:
			out[i] = float64(b[0])
		case miINT16:
			out[i] = float64(int16(d.order.Uint16(b)))
		case miUINT16, miUTF16:
			out[i] = float64(d.order.Uint16(b))
		case miINT32:
			out[i] = float64(int32(d.order.Uint32(b)))
		case miUINT32, miUTF32:
			out[i] = float64(d.order.Uint32(b))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(d.order.Uint32(b)))
		case miDOUBLE:
			out[i] = math.Float64frombits(d.order.Uint64(b))
		case miINT64:
			out[i] = float64(int64(d.order.Uint64(b)))
		case miUINT64:
			out[i] = float64(d.order.Uint64(b))
		}
	}
	return out, nil
}
