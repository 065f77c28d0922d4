package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"swextract/internal/config"
	"swextract/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "swextract.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

// seedUnit writes one annotation and its 2x5 instrument matrix. The first
// pair fits the matrix; the second is out of range.
func (e *cliTestEnv) seedUnit(t *testing.T) {
	t.Helper()
	dir := e.cfg.Paths.InputDir
	testsupport.WriteAnnotationCSV(t, dir, "UPI007_humanReview(V2R3).csv",
		testsupport.AnnotationRow("2", "4", "A-P"),
		testsupport.AnnotationRow("4", "6", "P-A"),
	)
	testsupport.WriteMatrixMAT(t, filepath.Join(dir, "UPI007-Visit2-Record3-Recon.mat"), "swSig_1Hz", testsupport.Sequence(2, 5))
}

func (e *cliTestEnv) outputPath() string {
	return filepath.Join(e.cfg.Paths.OutputDir, "extracted_columns__UPI007_Visit2_Record3.h5")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := make([]string, 0, 2)
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
