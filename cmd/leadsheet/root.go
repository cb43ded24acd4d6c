package main

import (
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/leadsheet/pkg/debug"
	"github.com/vanderheijden86/leadsheet/pkg/version"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var debugFlag bool
	var noWatch bool
	var timings bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "leadsheet [file]",
		Short:         "View and transpose song sheets in the terminal",
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugFlag {
				debug.SetEnabled(true)
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return runTUI(cmd.Context(), ctx, file, !noWatch)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Write diagnostics to stderr (or LEADSHEET_DEBUG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&timings, "timings", false, "Print timing and cache statistics on exit")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the song when it changes on disk")

	rootCmd.AddCommand(newPrintCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newRecentCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	finish := func(cmd *cobra.Command) {
		ctx.close()
		if timings {
			printTimings(cmd.ErrOrStderr())
		}
	}
	deferFinish(rootCmd, finish)

	return rootCmd
}

// deferFinish wraps every RunE in the tree so finish runs whether or not
// the command fails. Cobra's post-run hooks are skipped after an error.
func deferFinish(cmd *cobra.Command, finish func(*cobra.Command)) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			defer finish(c)
			return run(c, args)
		}
	}
	for _, sub := range cmd.Commands() {
		deferFinish(sub, finish)
	}
}
