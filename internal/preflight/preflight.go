package preflight

import (
	"fmt"
	"strings"

	"swextract/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks a batch run depends on.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Input directory", cfg.Paths.InputDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Failed returns the failed results.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summarize joins failed checks into one error, or returns nil when every
// check passed.
func Summarize(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, len(failed))
	for i, r := range failed {
		parts[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}
