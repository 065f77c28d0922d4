package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"swextract/internal/annotation"
	"swextract/internal/extract"
	"swextract/internal/fileutil"
	"swextract/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var output string
	var dataset string
	var title string

	cmd := &cobra.Command{
		Use:   "preview <file.h5>",
		Short: "Render the extracted windows of a dataset as a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := args[0]
			name := strings.TrimSpace(dataset)
			if name == "" {
				name = cfg.Output.Dataset
			}
			target := strings.TrimSpace(output)
			if target == "" {
				target = strings.TrimSuffix(source, filepath.Ext(source)) + ".png"
			}

			m, err := extract.Verify(source, name)
			if err != nil {
				return err
			}

			opts := preview.DefaultOptions()
			opts.Format = strings.ToLower(strings.TrimPrefix(filepath.Ext(target), "."))
			if title != "" {
				opts.Title = title
			} else {
				opts.Title = filepath.Base(source)
			}
			codes := annotation.DirectionCodes()
			opts.Label = func(code int) string {
				if label, ok := codes.Label(code); ok {
					return label
				}
				return "code " + strconv.Itoa(code)
			}

			image, err := preview.Render(m, opts)
			if err != nil {
				return fmt.Errorf("render preview: %w", err)
			}
			if err := fileutil.WriteFileAtomic(target, image, 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote preview to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Image path; the extension selects the format (png, svg, pdf)")
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset name (defaults to output.dataset)")
	cmd.Flags().StringVar(&title, "title", "", "Chart title")
	return cmd
}
