package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Norgate-AV/xcb/internal/output"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Report on a saved xcodebuild log",
		Long: `Read xcodebuild output from a file, or stdin when the file is
omitted or "-", and print the build report.`,
		RunE:         runParse,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	source := "stdin"

	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer f.Close()

		r = f
		source = args[0]
	}

	p := newPipeline(cmd, cfg)
	if err := p.Run(cmd.Context(), r); err != nil {
		return fmt.Errorf("failed to parse %s: %w", source, err)
	}

	output.Debug("log parsed", "source", source, "lines", p.Lines())

	b := p.Build()
	if b == nil {
		output.Warn("log has no build banner", "source", source, "lines", p.Lines())
		return fmt.Errorf("%s: %w", source, errNoBuild)
	}

	if err := writeReport(cmd, cfg, p.Builds()); err != nil {
		return err
	}

	return resultError(b)
}
