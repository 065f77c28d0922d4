package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"swextract/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.Ledger.Path
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No run history at %s\n", path)
				if !cfg.Ledger.Enabled {
					fmt.Fprintln(out, "Set [ledger] enabled = true to record runs.")
				}
				return nil
			}

			store, err := ledger.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			colorize := shouldColorize(out)
			if id := strings.TrimSpace(runID); id != "" {
				run, err := store.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				units, err := store.UnitsForRun(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				writeRunDetail(out, *run, units, colorize)
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			writeRunList(out, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the units of one run (any unique ID prefix)")
	return cmd
}

func writeRunList(out io.Writer, runs []ledger.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.Time(run.StartedAt),
			run.InputDir,
			strconv.Itoa(run.Counts.Completed),
			strconv.Itoa(run.Counts.Empty),
			strconv.Itoa(run.Counts.Skipped),
			strconv.Itoa(run.Counts.Failed),
			runState(run),
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "Run"},
		{header: "Started"},
		{header: "Input"},
		{header: "Completed", align: alignRight},
		{header: "Empty", align: alignRight},
		{header: "Skipped", align: alignRight},
		{header: "Failed", align: alignRight},
		{header: "State"},
	}, rows, nil))
}

func writeRunDetail(out io.Writer, run ledger.Run, units []ledger.UnitRecord, colorize bool) {
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Started: %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	fmt.Fprintf(out, "Input:   %s\n", run.InputDir)
	fmt.Fprintf(out, "Output:  %s\n", run.OutputDir)
	fmt.Fprintf(out, "State:   %s\n", runState(run))
	if len(units) == 0 {
		fmt.Fprintln(out, "No units recorded")
		return
	}

	rows := make([][]string, 0, len(units))
	for _, u := range units {
		detail := filepath.Base(u.OutputPath)
		if u.ErrorMessage != "" {
			detail = u.ErrorMessage
		} else if u.OutputPath == "" {
			detail = ""
		}
		rows = append(rows, []string{
			u.AnnotationFile,
			statusLabel(u.Status, colorize),
			strconv.Itoa(u.Pairs),
			strconv.Itoa(u.Rows),
			strconv.Itoa(u.SkippedPairs),
			u.Duration.String(),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "File"},
		{header: "Status"},
		{header: "Pairs", align: alignRight},
		{header: "Rows", align: alignRight},
		{header: "Skipped", align: alignRight},
		{header: "Duration", align: alignRight},
		{header: "Detail"},
	}, rows, nil))
}

func runState(run ledger.Run) string {
	switch {
	case run.ErrorMessage != "":
		return "aborted: " + run.ErrorMessage
	case run.FinishedAt == nil:
		return "running"
	default:
		return "finished"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
