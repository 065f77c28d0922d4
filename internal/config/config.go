package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Annotation describes where the boundary and direction columns live in the
// annotation spreadsheets and which boundary gap selects a row.
type Annotation struct {
	StartColumn int     `toml:"start_column"`
	EndColumn   int     `toml:"end_column"`
	LabelColumn int     `toml:"label_column"`
	BoundaryGap float64 `toml:"boundary_gap"`
}

// Instrument contains settings for the binary instrument recordings.
type Instrument struct {
	Variable  string `toml:"variable"`
	Extension string `toml:"extension"`
	// Describe logs the variables found in every instrument file and a summary
	// of each extracted row.
	Describe bool `toml:"describe"`
}

// Output contains settings for the extracted dataset files.
type Output struct {
	Dataset string `toml:"dataset"`
}

// Ledger contains configuration for the SQLite run history.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for swextract.
//
// Configuration sections:
//   - Paths: input, output and log directories
//   - Annotation: positional columns and the boundary gap filter
//   - Instrument: variable name and file extension of recordings
//   - Output: dataset name inside extracted files
//   - Ledger: optional run history database
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Annotation Annotation `toml:"annotation"`
	Instrument Instrument `toml:"instrument"`
	Output     Output     `toml:"output"`
	Ledger     Ledger     `toml:"ledger"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. When no file exists
// the built-in defaults are used. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directory and, when configured, the
// log directory and the ledger's parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Ledger.Enabled {
		dirs = append(dirs, filepath.Dir(c.Ledger.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the advisory lock file guarding the output directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, lockFileName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
