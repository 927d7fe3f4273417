package cmd

import (
	"fmt"

	"github.com/Norgate-AV/xcb/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "xcb "+version.String())
			return nil
		},
	}
}
