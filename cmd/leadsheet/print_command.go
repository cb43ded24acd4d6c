package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/leadsheet/pkg/engine"
	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

func newPrintCommand(ctx *commandContext) *cobra.Command {
	var steps int
	var colorMode string

	cmd := &cobra.Command{
		Use:   "print FILE...",
		Short: "Print song sheets, optionally transposed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.engineOptions()
			if err != nil {
				return err
			}
			eng := engine.NewLocal(opts...)
			results, err := engine.LoadAll(cmd.Context(), eng, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color, err := useColor(colorMode, out)
			if err != nil {
				return err
			}

			failed := 0
			for i, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
					failed++
					continue
				}
				c, err := transposeSteps(cmd.Context(), eng, r.Content, steps)
				if err != nil {
					return err
				}
				if len(results) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "==> %s <==\n", filepath.Base(r.Path))
				}
				fmt.Fprint(out, renderSheet(c, color))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be read", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "transpose", "t", 0, "Semitones to transpose (negative for down)")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "Colour output: auto, always or never")
	return cmd
}

// transposeSteps applies |steps| one-semitone engine steps and reconciles
// the result.
func transposeSteps(ctx context.Context, eng engine.Engine, c sheet.Content, steps int) (sheet.Content, error) {
	step := eng.TransposeUpOneStep
	if steps < 0 {
		step = eng.TransposeDownOneStep
		steps = -steps
	}
	for range steps {
		next, err := step(ctx, c)
		if err != nil {
			return sheet.Content{}, err
		}
		c = sheet.Reconcile(next)
	}
	return sheet.Reconcile(c), nil
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid --color %q (want auto, always or never)", mode)
	}
}

// printStyles builds the bucket styles on a renderer whose profile is
// fixed by the --color decision rather than detected from the output.
func printStyles(color bool) map[sheet.Bucket]lipgloss.Style {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return map[sheet.Bucket]lipgloss.Style{
		sheet.BucketSection: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		sheet.BucketChords:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		sheet.BucketLyrics:  r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func renderSheet(c sheet.Content, color bool) string {
	styles := printStyles(color)
	var b strings.Builder
	for _, line := range c.Lines {
		text := line.Text
		if style, ok := styles[sheet.StyleFor(line.Kind)]; ok && color {
			text = style.Render(text)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}
