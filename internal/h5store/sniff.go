package h5store

import (
	"bytes"
	"errors"
	"io"
	"os"
)

var signature = []byte("\x89HDF\r\n\x1a\n")

// IsHDF5 reports whether path carries the HDF5 superblock signature. The
// signature may sit at offset 0 or at any power of two from 512 on; MATLAB
// 7.3 files use 512 and keep their text header in front of it.
func IsHDF5(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, len(signature))
	for offset := int64(0); offset <= 1<<20; {
		_, err := f.ReadAt(buf, offset)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if bytes.Equal(buf, signature) {
			return true, nil
		}
		if offset == 0 {
			offset = 512
		} else {
			offset *= 2
		}
	}
	return false, nil
}
