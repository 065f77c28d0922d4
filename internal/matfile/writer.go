package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf16"
)

var le = binary.LittleEndian

// Write encodes vars as an uncompressed little-endian Level 5 MAT file.
// Numeric data is stored as double regardless of class.
func Write(w io.Writer, vars ...*Variable) error {
	return write(w, false, vars)
}

// WriteCompressed is like Write but stores every variable in a zlib
// compressed element, as MATLAB does by default since version 7.
func WriteCompressed(w io.Writer, vars ...*Variable) error {
	return write(w, true, vars)
}

func write(w io.Writer, compress bool, vars []*Variable) error {
	out := header(time.Now())
	for _, v := range vars {
		el, err := encodeMatrix(v)
		if err != nil {
			return err
		}
		if compress {
			var zbuf bytes.Buffer
			zw := zlib.NewWriter(&zbuf)
			if _, err := zw.Write(el); err != nil {
				return err
			}
			if err := zw.Close(); err != nil {
				return err
			}
			out = le.AppendUint32(out, miCOMPRESSED)
			out = le.AppendUint32(out, uint32(zbuf.Len()))
			out = append(out, zbuf.Bytes()...)
			continue
		}
		out = append(out, el...)
	}
	_, err := w.Write(out)
	return err
}

func header(now time.Time) []byte {
	text := fmt.Sprintf("MATLAB 5.0 MAT-file, Platform: GLNXA64, Created on: %s", now.UTC().Format(time.ANSIC))
	out := make([]byte, headerSize)
	copy(out, text)
	for i := len(text); i < headerTextSize; i++ {
		out[i] = ' '
	}
	le.PutUint16(out[124:], version5)
	out[126], out[127] = 'I', 'M'
	return out
}

func encodeMatrix(v *Variable) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("matfile: nil variable")
	}
	if v.Len() != 0 && v.Class.Numeric() && len(v.Real) != v.Len() {
		return nil, fmt.Errorf("matfile: %s holds %d values for %s", v.Name, len(v.Real), v.Shape())
	}

	word := uint32(v.Class)
	if v.Complex {
		word |= flagComplex
	}
	if v.Global {
		word |= flagGlobal
	}
	if v.Logical {
		word |= flagLogical
	}
	flags := le.AppendUint32(nil, word)
	flags = le.AppendUint32(flags, 0)

	dims := make([]byte, 0, 4*len(v.Dims))
	for _, d := range v.Dims {
		dims = le.AppendUint32(dims, uint32(int32(d)))
	}

	var body []byte
	body = appendElement(body, miUINT32, flags)
	body = appendElement(body, miINT32, dims)
	body = appendElement(body, miINT8, []byte(v.Name))

	switch {
	case v.Class == ClassChar:
		units := utf16.Encode([]rune(v.Text))
		data := make([]byte, 0, 2*len(units))
		for _, u := range units {
			data = le.AppendUint16(data, u)
		}
		body = appendElement(body, miUINT16, data)
	case v.Class.Numeric() && v.Class != ClassSparse:
		body = appendElement(body, miDOUBLE, doubles(v.Real))
		if v.Complex {
			body = appendElement(body, miDOUBLE, doubles(v.Imag))
		}
	default:
		return nil, fmt.Errorf("matfile: cannot encode %s variable %s", v.Class, v.Name)
	}

	return appendElement(nil, miMATRIX, body), nil
}

func doubles(values []float64) []byte {
	out := make([]byte, 0, 8*len(values))
	for _, value := range values {
		out = le.AppendUint64(out, math.Float64bits(value))
	}
	return out
}

// appendElement writes a tagged data element. Payloads of one to four bytes
// use the packed small element form.
func appendElement(dst []byte, typ uint32, payload []byte) []byte {
	n := len(payload)
	if n > 0 && n <= 4 && typ != miMATRIX {
		dst = le.AppendUint32(dst, uint32(n)<<16|typ)
		dst = append(dst, payload...)
		return append(dst, make([]byte, 4-n)...)
	}
	dst = le.AppendUint32(dst, typ)
	dst = le.AppendUint32(dst, uint32(n))
	dst = append(dst, payload...)
	return append(dst, make([]byte, pad8(n)-n)...)
}
