package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/Norgate-AV/xcb/internal/config"
	"github.com/Norgate-AV/xcb/internal/output"
	"github.com/Norgate-AV/xcb/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the xcb command tree. Running the root command on its own
// is the same as "xcb build".
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xcb",
		Short: "Readable xcodebuild output",
		Long: `Run xcodebuild, or read a saved xcodebuild log, and report
the build as it happens: actions, compiler errors and the final result.`,
		RunE:              runBuild,
		PersistentPreRunE: setupLogging,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		Version:           version.String(),
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolP("silent", "s", false, "Suppress raw output from xcodebuild")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail on output that cannot be attributed to a build or action")
	rootCmd.PersistentFlags().StringP("format", "f", config.DefaultFormat, "Report format (text, json, yaml)")
	rootCmd.PersistentFlags().StringP("out", "o", "", "Write the final report to a file")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: nearest .xcb.yml)")
	addBuildFlags(rootCmd.Flags())

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command and exits with its status
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		output.Error(err.Error())
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	output.SetupLoggingTo(cmd.ErrOrStderr(), verbose)

	return nil
}

// loadConfig resolves configuration for cmd. extraArgs are handed to xcodebuild.
func loadConfig(cmd *cobra.Command, extraArgs []string) (*config.Config, error) {
	loader := config.NewLoader()
	loader.ConfigFile, _ = cmd.Flags().GetString("config")

	cfg, err := loader.LoadForCommand(cmd, extraArgs)
	if err != nil {
		return nil, err
	}

	// verbose may come from a config file rather than the flag
	if cfg.Verbose {
		output.SetupLoggingTo(cmd.ErrOrStderr(), true)
	}

	return cfg, nil
}
