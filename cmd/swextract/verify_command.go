package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"swextract/internal/extract"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "verify <file.h5>",
		Short: "Print the shape and contents of an extracted dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(dataset)
			if name == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				name = cfg.Output.Dataset
			}

			m, err := extract.Verify(args[0], name)
			if err != nil {
				return err
			}
			rows, cols := m.Dims()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dataset: %s\n", name)
			fmt.Fprintf(out, "Shape: (%d, %d)\n", rows, cols)
			fmt.Fprintf(out, "%v\n", mat.Formatted(m, mat.Squeeze()))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset name (defaults to output.dataset)")
	return cmd
}
