// Package cli implements the goundo command line: replaying edit scripts
// against workflow documents and inspecting the history journal.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/goundo/internal/logging"
	"github.com/dshills/goundo/pkg/engine"
)

const (
	// Version is the current version of goundo
	Version = "0.1.0"

	configDirEnv   = "GOUNDO_CONFIG_DIR"
	configFileName = "config.yaml"
)

// Config holds the global configuration for the goundo CLI
type Config struct {
	ConfigDir string
	Debug     bool
	Settings  Settings
}

// Settings is the content of config.yaml.
type Settings struct {
	History engine.Config   `yaml:"history"`
	Journal JournalSettings `yaml:"journal"`
}

// JournalSettings controls the SQLite history journal.
type JournalSettings struct {
	// Path is resolved against the config directory when relative.
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() Settings {
	return Settings{
		History: engine.DefaultConfig(),
		Journal: JournalSettings{Path: "journal.db", Enabled: true},
	}
}

// GlobalConfig is the shared configuration instance
var GlobalConfig = &Config{}

// NewRootCommand creates the root cobra command for goundo
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goundo",
		Short: "goundo - transactional editing with undo and redo",
		Long: `goundo applies edit scripts to workflow documents through a transactional
undo/redo engine. Every edit is recorded as a command that can be undone,
redone, merged or discarded, and the history can be journaled to SQLite.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.goundo)")

	cmd.AddCommand(NewReplayCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewQueryCommand())

	return cmd
}

// initConfig initializes the configuration directory and loads config.yaml,
// writing the defaults when it does not exist yet.
func initConfig() error {
	// Environment variable always takes priority (for testing)
	if envDir := os.Getenv(configDirEnv); envDir != "" {
		GlobalConfig.ConfigDir = envDir
	} else if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		GlobalConfig.ConfigDir = filepath.Join(homeDir, ".goundo")
	}

	if err := os.MkdirAll(GlobalConfig.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settings, err := loadSettings(filepath.Join(GlobalConfig.ConfigDir, configFileName))
	if err != nil {
		return err
	}
	GlobalConfig.Settings = settings
	return nil
}

func loadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data, err = yaml.Marshal(settings)
		if err != nil {
			return settings, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return settings, fmt.Errorf("failed to write default config: %w", err)
		}
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := settings.History.Validate(); err != nil {
		return settings, fmt.Errorf("config %s: %w", path, err)
	}
	return settings, nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	if envDir := os.Getenv(configDirEnv); envDir != "" {
		return envDir
	}
	if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".goundo"
		}
		return filepath.Join(homeDir, ".goundo")
	}
	return GlobalConfig.ConfigDir
}

// GetJournalPath returns the journal database path
func GetJournalPath() string {
	path := GlobalConfig.Settings.Journal.Path
	if path == "" {
		path = DefaultSettings().Journal.Path
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetConfigDir(), path)
}

// newLogger returns the command logger. Without --debug only warnings and
// errors are written.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if GlobalConfig.Debug {
		level = slog.LevelDebug
	}
	return logging.New(level, cmd.ErrOrStderr())
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
