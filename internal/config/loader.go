package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configExts are the config file formats viper can read for us
var configExts = []string{"yml", "yaml", "json", "toml"}

// flagKeys maps command flags onto config keys
var flagKeys = map[string]string{
	"xcodebuild":    "xcodebuild",
	"project":       "project",
	"target":        "target",
	"configuration": "configuration",
	"sdk":           "sdk",
	"format":        "format",
	"out":           "out",
	"silent":        "silent",
	"verbose":       "verbose",
	"strict":        "strict",
}

// Loader handles configuration loading from various sources
type Loader struct {
	// Explicit config file; skips global and local discovery when set
	ConfigFile string

	// Directory the local config search starts from; defaults to the working directory
	Dir string

	// Global config directory; defaults to <user config dir>/xcb
	GlobalDir string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForCommand loads configuration for a command run, layering defaults,
// global config, local config, environment and finally command flags.
// Any args after "--" are passed through to xcodebuild.
func (l *Loader) LoadForCommand(cmd *cobra.Command, extraArgs []string) (*Config, error) {
	l.setupViperDefaults()

	if l.ConfigFile != "" {
		viper.SetConfigFile(l.ConfigFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", l.ConfigFile, err)
		}
	} else {
		l.loadGlobalConfig()
		l.loadLocalConfig()
	}

	l.bindEnv()
	l.bindCommandFlags(cmd)

	if len(extraArgs) > 0 {
		viper.Set("args", extraArgs)
	}

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("xcodebuild", DefaultXcodebuildPath)
	viper.SetDefault("format", DefaultFormat)
	viper.SetDefault("silent", DefaultSilent)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("strict", DefaultStrict)
}

// loadGlobalConfig loads configuration from the user's config directory
func (l *Loader) loadGlobalConfig() {
	globalDir := l.GlobalDir
	if globalDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return
		}

		globalDir = filepath.Join(base, "xcb")
	}

	for _, ext := range configExts {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges the nearest .xcb config over the global one
func (l *Loader) loadLocalConfig() {
	dir := l.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return // silently ignore, config.Load() will handle validation
		}

		dir = cwd
	}

	localPath := FindLocalConfig(dir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindEnv lets XCB_TARGET, XCB_CONFIGURATION etc. override config files
func (l *Loader) bindEnv() {
	viper.SetEnvPrefix("xcb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
