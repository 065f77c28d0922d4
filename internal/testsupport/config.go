package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"swextract/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Input and output share one directory, as they do when the tool runs in the
// working directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "data")
	cfgVal.Paths.OutputDir = cfgVal.Paths.InputDir
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ledger.Path = filepath.Join(base, "ledger", "ledger.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("mkdir input dir: %v", err)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithLedger enables the SQLite run history.
func WithLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = true
	}
}

// WithSeparateOutput writes extracted files to their own directory.
func WithSeparateOutput() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = filepath.Join(b.baseDir, "out")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
