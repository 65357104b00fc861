package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/persimq/pkg/persimq"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "persimq version %s (%s, %s/%s)\n",
				persimq.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
