package config

import (
	"fmt"
	"path/filepath"

	"github.com/Norgate-AV/xcb/internal/render"
	"github.com/Norgate-AV/xcb/internal/utils"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultXcodebuildPath = "xcodebuild"
	DefaultFormat         = render.FormatText
	DefaultSilent         = false
	DefaultVerbose        = false
	DefaultStrict         = false
)

// Holds the configuration options for xcb
type Config struct {
	// Path to the xcodebuild binary (resolved via PATH when not absolute)
	XcodebuildPath string

	// Xcode project to build (.xcodeproj); empty lets xcodebuild pick
	Project string

	// Raw target list as configured (e.g., "App,AppTests")
	Target string
	// Parsed targets
	Targets []string

	// Build configuration (e.g., Debug, Release); empty uses the project default
	Configuration string

	// SDK to build against (e.g., iphonesimulator)
	SDK string

	// Extra arguments passed through to xcodebuild
	ExtraArgs []string

	// Report format: text, json or yaml
	Format string

	// Output file for the final report
	OutputFile string

	// Suppress the raw xcodebuild output
	Silent bool

	// Enable verbose output
	Verbose bool

	// Fail on output that cannot be attributed (errors before any action)
	Strict bool
}

func Load() (*Config, error) {
	cfg := &Config{
		XcodebuildPath: viper.GetString("xcodebuild"),
		Project:        viper.GetString("project"),
		Target:         viper.GetString("target"),
		Configuration:  viper.GetString("configuration"),
		SDK:            viper.GetString("sdk"),
		ExtraArgs:      viper.GetStringSlice("args"),
		Format:         viper.GetString("format"),
		OutputFile:     viper.GetString("out"),
		Silent:         viper.GetBool("silent"),
		Verbose:        viper.GetBool("verbose"),
		Strict:         viper.GetBool("strict"),
	}

	// Apply defaults if not set
	if cfg.XcodebuildPath == "" {
		cfg.XcodebuildPath = DefaultXcodebuildPath
	}

	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	// a bare name is looked up on PATH, anything with a separator is a path
	if filepath.Base(c.XcodebuildPath) != c.XcodebuildPath {
		abs, err := filepath.Abs(c.XcodebuildPath)
		if err != nil {
			return fmt.Errorf("invalid xcodebuild path: %v", err)
		}

		c.XcodebuildPath = abs
	}

	if c.Project != "" {
		abs, err := filepath.Abs(c.Project)
		if err != nil {
			return fmt.Errorf("invalid project path: %v", err)
		}

		c.Project = abs
	}

	// Resolve output file path
	if c.OutputFile != "" {
		abs, err := filepath.Abs(c.OutputFile)
		if err != nil {
			return fmt.Errorf("invalid output file path: %v", err)
		}

		c.OutputFile = abs
	}

	if !render.IsValidFormat(c.Format) {
		return fmt.Errorf("invalid report format: %s (want one of %v)", c.Format, render.Formats)
	}

	c.Targets = utils.ParseTargets(c.Target)

	return nil
}
