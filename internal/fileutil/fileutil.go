package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempSibling returns an unused path in dst's directory. The extension of dst
// is kept so libraries that sniff names still recognise the file.
func TempSibling(dst string) string {
	dir, base := filepath.Split(dst)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp%s", stem, uuid.NewString()[:8], ext))
}

// Commit lets produce build the file at a temporary sibling path and renames
// it over dst only when produce succeeds. On failure the temporary file is
// removed and dst is left untouched.
func Commit(dst string, produce func(tmp string) error) error {
	tmp := TempSibling(dst)
	if err := produce(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to dst through Commit.
func WriteFileAtomic(dst string, data []byte, mode os.FileMode) error {
	return Commit(dst, func(tmp string) error {
		out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			_ = out.Close()
			return err
		}
		if err := out.Sync(); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	})
}
