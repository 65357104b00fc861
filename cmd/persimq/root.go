package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "persimq",
		Short:         "Inspect and manage persimq queue files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.file, "file", "f", "", "Queue file path")
	flags.Int64VarP(&ctx.size, "size", "s", 0, "Queue file size in bytes (0 keeps the current size)")
	flags.StringVar(&ctx.configPath, "config", "", "Configuration file path")
	flags.StringVarP(&ctx.verbosity, "verbosity", "v", "", "Diagnostic level: silent, errors, warnings, info, debug, debug-verbose")
	flags.StringVar(&ctx.logFile, "log-file", "", "Write diagnostics to a rotating log file instead of stderr")
	flags.BoolVar(&ctx.noWait, "no-wait", false, "Fail instead of waiting when the queue file is locked")

	rootCmd.AddCommand(newPushCommand(ctx))
	rootCmd.AddCommand(newPopCommand(ctx))
	rootCmd.AddCommand(newPeekCommand(ctx))
	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newClearCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
