package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/leadsheet/pkg/chord"
	"github.com/vanderheijden86/leadsheet/pkg/engine"
	"github.com/vanderheijden86/leadsheet/pkg/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var format string
	var steps int
	var key string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a song sheet as text, markdown, JSON, PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key != "" && !chord.IsKey(key) {
				return fmt.Errorf("unknown key %q", key)
			}
			format = exportFormat(format, output)

			opts, err := ctx.engineOptions()
			if err != nil {
				return err
			}
			eng := engine.NewLocal(opts...)
			c, err := eng.RetrieveFileContents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err = transposeSteps(cmd.Context(), eng, c, steps)
			if err != nil {
				return err
			}
			title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

			switch format {
			case "png", "svg":
				if output == "" || output == "-" {
					return fmt.Errorf("--output is required for %s export", format)
				}
				if err := export.SaveSnapshot(export.SnapshotOptions{
					Path:    output,
					Format:  format,
					Title:   title,
					Key:     key,
					Content: c,
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				return nil
			}

			text, err := export.Render(c, format, title)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (\"-\" or empty for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "text, markdown, json, png or svg (default from --output extension)")
	cmd.Flags().IntVarP(&steps, "transpose", "t", 0, "Semitones to transpose (negative for down)")
	cmd.Flags().StringVar(&key, "key", "", "Musical key shown in image exports")
	return cmd
}

// exportFormat resolves the format from the flag or the output extension.
func exportFormat(flag, output string) string {
	if f := strings.ToLower(strings.TrimSpace(flag)); f != "" {
		return f
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".png":
		return "png"
	case ".svg":
		return "svg"
	case ".md", ".markdown":
		return export.FormatMarkdown
	case ".json":
		return export.FormatJSON
	default:
		return export.FormatText
	}
}
