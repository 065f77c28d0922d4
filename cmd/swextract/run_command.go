package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"swextract/internal/batch"
	"swextract/internal/faults"
	"swextract/internal/logging"
)

// runBatch processes the input directory once. Failed units do not fail the
// command; only run-level problems do.
func runBatch(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(logger)

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	summary, err := batch.NewRunner(cfg, logger, out).Run(runCtx)
	if len(summary.Units) > 0 {
		writeRunSummary(out, summary, shouldColorize(out))
	}
	return err
}

func writeRunSummary(out io.Writer, summary batch.Summary, colorize bool) {
	columns := []column{
		{header: "File"},
		{header: "Unit"},
		{header: "Status"},
		{header: "Pairs", align: alignRight},
		{header: "Rows", align: alignRight},
		{header: "Skipped", align: alignRight},
		{header: "Detail"},
	}
	rows := make([][]string, 0, len(summary.Units))
	for _, u := range summary.Units {
		id := ""
		if !u.Unit.IsZero() {
			id = u.Unit.String()
		}
		rows = append(rows, []string{
			u.File,
			id,
			statusLabel(u.Status, colorize),
			strconv.Itoa(len(u.Pairs)),
			strconv.Itoa(u.Rows),
			strconv.Itoa(u.Skipped),
			outcomeDetail(u),
		})
	}
	footer := []string{"Total", "", strconv.Itoa(summary.Counts.Total())}
	fmt.Fprintln(out, renderTable(columns, rows, footer))

	elapsed := summary.Finished.Sub(summary.Started).Round(time.Millisecond)
	lines := []string{
		renderStatusLine("Completed", statusOK, strconv.Itoa(summary.Counts.Completed), colorize),
		renderStatusLine("Empty", statusWarn, strconv.Itoa(summary.Counts.Empty), colorize),
		renderStatusLine("Skipped", statusWarn, strconv.Itoa(summary.Counts.Skipped), colorize),
		renderStatusLine("Failed", statusError, strconv.Itoa(summary.Counts.Failed), colorize),
		renderStatusLine("Elapsed", statusInfo, elapsed.String(), colorize),
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}

func outcomeDetail(u batch.UnitOutcome) string {
	switch {
	case u.Err == nil:
		return filepath.Base(u.OutputPath)
	case u.Status == faults.StatusSkipped:
		return "file name is not an annotation"
	default:
		return u.Err.Error()
	}
}
