package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/config"
	"github.com/Norgate-AV/xcb/internal/output"
	"github.com/Norgate-AV/xcb/internal/pipeline"
	"github.com/Norgate-AV/xcb/internal/render"
	"github.com/Norgate-AV/xcb/internal/reporter"
	"github.com/Norgate-AV/xcb/internal/xcodebuild"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runXcodebuild is swapped out in tests
var runXcodebuild = func(ctx context.Context, cfg *config.Config, sink io.Writer, p *pipeline.Pipeline) error {
	return xcodebuild.NewCommandBuilder().Run(ctx, cfg, sink, p)
}

func newBuildCmd() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build [-- xcodebuild args]",
		Short: "Build an Xcode project",
		Long: `Run xcodebuild and report progress as it builds.
Arguments are passed through to xcodebuild unchanged.`,
		RunE:         runBuild,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
	}

	addBuildFlags(buildCmd.Flags())

	return buildCmd
}

func addBuildFlags(flags *pflag.FlagSet) {
	flags.StringP("project", "p", "", "Xcode project to build (.xcodeproj)")
	flags.StringP("target", "t", "", "Targets to build, comma separated (e.g., App,AppTests)")
	flags.StringP("configuration", "c", "", "Build configuration (e.g., Debug, Release)")
	flags.String("sdk", "", "SDK to build against (e.g., iphonesimulator)")
	flags.String("xcodebuild", "", "Path to the xcodebuild binary")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	p := newPipeline(cmd, cfg)

	runErr := runXcodebuild(cmd.Context(), cfg, cmd.ErrOrStderr(), p)

	var xcErr *xcodebuild.ExitError
	if runErr != nil && !errors.As(runErr, &xcErr) {
		return runErr
	}

	b := p.Build()
	if b == nil {
		if xcErr != nil {
			return &ExitError{Code: xcErr.Code, Err: xcErr}
		}

		output.Warn("xcodebuild printed no build banner", "xcodebuild", cfg.XcodebuildPath)
		return errNoBuild
	}

	if err := writeReport(cmd, cfg, p.Builds()); err != nil {
		return err
	}

	if xcErr != nil {
		return &ExitError{Code: xcErr.Code, Err: xcErr}
	}

	return resultError(b)
}

// newPipeline wires a pipeline for cfg with the console renderer attached
func newPipeline(cmd *cobra.Command, cfg *config.Config) *pipeline.Pipeline {
	p := pipeline.New(reporter.WithStrict(cfg.Strict))

	errOut := cmd.ErrOrStderr()
	live := cfg.Silent && render.IsTerminal(errOut)
	render.NewConsole(errOut, render.WithLiveProgress(live)).Attach(p.Events())

	return p
}

// writeReport writes the final report, one entry per build, to the
// configured file or stdout
func writeReport(cmd *cobra.Command, cfg *config.Config, builds []*build.Build) error {
	if cfg.OutputFile == "" {
		return render.WriteReport(cmd.OutOrStdout(), builds, cfg.Format)
	}

	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := render.WriteReport(f, builds, cfg.Format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	output.Info("report written", "path", cfg.OutputFile, "format", cfg.Format, "builds", len(builds))

	return nil
}

// resultError maps an unsuccessful build onto exit status 1. Only the last
// build receives xcodebuild's result line, so it decides.
func resultError(b *build.Build) error {
	if b.State() == build.Successful {
		return nil
	}

	return &ExitError{Code: 1, Err: fmt.Errorf("build %s", b.State())}
}
