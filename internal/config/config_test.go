package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"swextract/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadWithoutFileUsesFixedDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	chdir(t, work)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}

	wantDir, _ := filepath.EvalSymlinks(work)
	gotDir, _ := filepath.EvalSymlinks(cfg.Paths.InputDir)
	if gotDir != wantDir {
		t.Fatalf("input dir = %q, want %q", cfg.Paths.InputDir, work)
	}
	if cfg.Paths.OutputDir != cfg.Paths.InputDir {
		t.Fatalf("output dir %q should default to input dir %q", cfg.Paths.OutputDir, cfg.Paths.InputDir)
	}
	a := cfg.Annotation
	if a.StartColumn != 2 || a.EndColumn != 3 || a.LabelColumn != 8 {
		t.Fatalf("unexpected columns %+v", a)
	}
	if a.BoundaryGap != 2 {
		t.Fatalf("boundary gap = %v, want 2", a.BoundaryGap)
	}
	if cfg.Instrument.Variable != "swSig_1Hz" || cfg.Instrument.Extension != ".mat" {
		t.Fatalf("unexpected instrument %+v", cfg.Instrument)
	}
	if cfg.Output.Dataset != "swSig_1Hz_extracted" {
		t.Fatalf("dataset = %q", cfg.Output.Dataset)
	}
	if cfg.Ledger.Enabled {
		t.Fatal("expected ledger disabled by default")
	}
	if cfg.Paths.LogDir != "" {
		t.Fatalf("expected no log dir, got %q", cfg.Paths.LogDir)
	}
}

func TestLoadProjectFileOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	chdir(t, work)

	content := `
[paths]
input_dir = "in"
output_dir = "out"

[instrument]
extension = "h5"

[ledger]
enabled = true

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(filepath.Join(work, "swextract.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected project config to be found")
	}
	if filepath.Base(cfg.Paths.InputDir) != "in" || filepath.Base(cfg.Paths.OutputDir) != "out" {
		t.Fatalf("unexpected paths %+v", cfg.Paths)
	}
	if cfg.Instrument.Extension != ".h5" {
		t.Fatalf("extension = %q, want .h5", cfg.Instrument.Extension)
	}
	if cfg.Ledger.Path != filepath.Join(cfg.Paths.OutputDir, ".swextract", "ledger.db") {
		t.Fatalf("ledger path = %q", cfg.Ledger.Path)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(cfg.Ledger.Path)); err != nil {
		t.Fatalf("ledger dir not created: %v", err)
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.OutputDir, ".swextract.lock") {
		t.Fatalf("lock path = %q", cfg.LockPath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"duplicate columns": "[annotation]\nstart_column = 3\nend_column = 3\n",
		"negative column":   "[annotation]\nlabel_column = -1\n",
		"negative gap":      "[annotation]\nboundary_gap = -2.0\n",
		"empty variable":    "[instrument]\nvariable = \"  \"\n",
		"empty dataset":     "[output]\ndataset = \"\"\n",
		"bad format":        "[logging]\nformat = \"xml\"\n",
		"unknown key":       "[output]\ndatset = \"x\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestSampleConfigDecodesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	decoded := config.Default()
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	want := config.Default()
	if decoded.Annotation != want.Annotation || decoded.Instrument != want.Instrument || decoded.Output != want.Output {
		t.Fatalf("sample diverges from defaults: %+v", decoded)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
}
