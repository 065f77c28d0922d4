package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInstrument()
	c.Output.Dataset = strings.TrimSpace(c.Output.Dataset)
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		c.Paths.InputDir = defaultInputDir
	}
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = c.Paths.InputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeInstrument() {
	c.Instrument.Variable = strings.TrimSpace(c.Instrument.Variable)
	ext := strings.TrimSpace(c.Instrument.Extension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Instrument.Extension = ext
}

// normalizeLedger resolves the ledger path even when recording is disabled so
// that history from earlier runs stays readable.
func (c *Config) normalizeLedger() error {
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = filepath.Join(c.Paths.OutputDir, defaultLedgerDir, defaultLedgerName)
	}
	var err error
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
