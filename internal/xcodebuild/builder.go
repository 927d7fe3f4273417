// Package xcodebuild runs xcodebuild and streams its output into a pipeline.
package xcodebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Norgate-AV/xcb/internal/codes"
	"github.com/Norgate-AV/xcb/internal/config"
	"github.com/Norgate-AV/xcb/internal/output"
	"github.com/Norgate-AV/xcb/internal/pipeline"
)

// Commander interface for testing
type Commander interface {
	StdoutPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

// ExitError reports a non-zero xcodebuild exit status
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("xcodebuild exited with code %d: %s", e.Code, codes.GetErrorMessage(e.Code))
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// CommandBuilder handles building and running xcodebuild commands
type CommandBuilder struct {
	execCommand func(ctx context.Context, name string, args ...string) Commander
	stderr      io.Writer
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{
		execCommand: func(ctx context.Context, name string, args ...string) Commander {
			return exec.CommandContext(ctx, name, args...)
		},
		stderr: os.Stderr,
	}
}

// BuildCommandArgs builds the command arguments for xcodebuild
func (cb *CommandBuilder) BuildCommandArgs(cfg *config.Config) ([]string, error) {
	var cmdArgs []string

	if cfg.Project != "" {
		if !strings.HasSuffix(cfg.Project, ".xcodeproj") {
			return nil, fmt.Errorf("project must be an .xcodeproj: %s", cfg.Project)
		}

		cmdArgs = append(cmdArgs, "-project", cfg.Project)
	}

	for _, target := range cfg.Targets {
		cmdArgs = append(cmdArgs, "-target", target)
	}

	if cfg.Configuration != "" {
		cmdArgs = append(cmdArgs, "-configuration", cfg.Configuration)
	}

	if cfg.SDK != "" {
		cmdArgs = append(cmdArgs, "-sdk", cfg.SDK)
	}

	cmdArgs = append(cmdArgs, cfg.ExtraArgs...)

	return cmdArgs, nil
}

// Run builds xcodebuild's arguments from cfg and executes it, echoing the
// raw output to sink unless cfg.Silent is set.
func (cb *CommandBuilder) Run(ctx context.Context, cfg *config.Config, sink io.Writer, p *pipeline.Pipeline) error {
	cmdArgs, err := cb.BuildCommandArgs(cfg)
	if err != nil {
		return err
	}

	cb.PrintBuildInfo(cfg, cmdArgs)

	var echo io.Writer
	if !cfg.Silent {
		echo = sink
	}

	return cb.ExecuteCommand(ctx, cfg.XcodebuildPath, cmdArgs, p, echo)
}

// ExecuteCommand runs xcodebuild, feeding its stdout line by line into p.
// When echo is non-nil the raw output is copied to it as well.
// Errors raised while translating output take precedence over the exit status.
func (cb *CommandBuilder) ExecuteCommand(ctx context.Context, xcodebuildPath string, cmdArgs []string, p *pipeline.Pipeline, echo io.Writer) error {
	c := cb.execCommand(ctx, xcodebuildPath, cmdArgs...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stderr = cb.stderr
	}

	stdout, err := c.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to xcodebuild output: %w", err)
	}

	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start xcodebuild: %w", err)
	}

	var r io.Reader = stdout
	if echo != nil {
		r = io.TeeReader(stdout, echo)
	}

	runErr := p.Run(ctx, r)
	if runErr != nil {
		// keep the process from blocking on a full pipe
		_, _ = io.Copy(io.Discard, r)
	}

	waitErr := c.Wait()

	if runErr != nil {
		return fmt.Errorf("failed to process xcodebuild output: %w", runErr)
	}

	if waitErr != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(waitErr, &exitErr) {
			code := exitErr.ExitCode()
			if codes.IsSuccess(code) {
				return nil
			}

			output.Debug("xcodebuild failed", "code", code, "reason", codes.GetErrorMessage(code))

			return &ExitError{Code: code, Err: waitErr}
		}

		return waitErr
	}

	return nil
}

// PrintBuildInfo logs the resolved build settings at debug level
func (cb *CommandBuilder) PrintBuildInfo(cfg *config.Config, cmdArgs []string) {
	output.Debug("build settings",
		"xcodebuild", cfg.XcodebuildPath,
		"project", cfg.Project,
		"targets", cfg.Targets,
		"configuration", cfg.Configuration,
		"sdk", cfg.SDK,
		"out", cfg.OutputFile,
		"format", cfg.Format,
	)
	output.Debug("command", "line", cfg.XcodebuildPath+" "+strings.Join(cmdArgs, " "))
}
