package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"swextract/internal/instrument"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <file.mat>",
		Short:       "List the variables stored in an instrument file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := instrument.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			vars := src.Variables()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s\n", args[0])
			fmt.Fprintf(out, "Format: %s\n", src.Format())
			if len(vars) == 0 {
				fmt.Fprintln(out, "No variables found")
				return nil
			}

			rows := make([][]string, 0, len(vars))
			for _, v := range vars {
				rows = append(rows, []string{v.Name, v.Kind, v.Shape()})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Name"},
				{header: "Class"},
				{header: "Shape", align: alignRight},
			}, rows, nil))
			return nil
		},
	}
}
