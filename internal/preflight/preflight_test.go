package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"swextract/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectory_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckReadableDirectory("in", dir); !result.Passed {
		t.Fatalf("expected read-only dir to pass read check: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("out", dir); result.Passed {
		t.Fatal("expected read-only dir to fail write check")
	}
}

func TestRunAllAndSummarize(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "missing")

	results := RunAll(&cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results without a log dir, got %d", len(results))
	}
	err := Summarize(results)
	if err == nil || !strings.Contains(err.Error(), "Output directory") {
		t.Fatalf("expected output directory failure, got %v", err)
	}
	if failed := Failed(results); len(failed) != 1 {
		t.Fatalf("expected one failure, got %+v", failed)
	}

	cfg.Paths.OutputDir = cfg.Paths.InputDir
	if err := Summarize(RunAll(&cfg)); err != nil {
		t.Fatalf("expected all checks to pass, got %v", err)
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
