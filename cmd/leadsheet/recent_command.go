package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	var prune bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened song files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			if lib == nil {
				return errors.New("the library is disabled (library.enabled: false)")
			}

			entries, err := lib.Recent(limit)
			if err != nil {
				return err
			}
			if prune {
				kept := entries[:0]
				for _, e := range entries {
					if _, err := os.Stat(e.Path); errors.Is(err, os.ErrNotExist) {
						if err := lib.Forget(e.Path); err != nil {
							return err
						}
						continue
					}
					kept = append(kept, e)
				}
				entries = kept
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No recent files.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Path,
					e.OpenedAt.Local().Format(time.DateTime),
					strconv.Itoa(e.Opens),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Last opened", "Opens"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of files to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&prune, "prune", false, "Forget files that no longer exist")
	return cmd
}
