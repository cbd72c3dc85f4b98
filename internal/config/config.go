// Package config handles command-line argument parsing, the optional YAML
// settings file and the location of the data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Exported constants.
const (
	// AppName names the data directory and the log file
	AppName = "tidy-files"

	// Data directory file names
	TrackingFileName   = "copiedfiles.json"
	CategoriesFileName = "categories.json"
	AppConfigFileName  = "appconfig.json"
	SettingsFileName   = "settings.yaml"
	LogDirName         = "logs"
	LogFileName        = AppName + ".log"

	// Command names
	CommandRun           = "run"
	CommandTracked       = "tracked"
	CommandForget        = "forget"
	CommandResetTracking = "reset-tracking"
)

// Config holds the application configuration
type Config struct {
	DataDir  string `arg:"--data-dir,env:TIDY_FILES_DATA_DIR" help:"Directory holding tracking, categories and logs (default: per-user config dir)"`
	Settings string `arg:"--settings,env:TIDY_FILES_SETTINGS" help:"YAML settings file (default: <data-dir>/settings.yaml when present)"`
	LogLevel string `arg:"--log-level" help:"Log level: debug|info|warn|error (overrides the settings file)"`

	Run           *RunCmd           `arg:"subcommand:run" help:"Start the interactive menu (default)"`
	Tracked       *TrackedCmd       `arg:"subcommand:tracked" help:"List files already copied"`
	Forget        *ForgetCmd        `arg:"subcommand:forget" help:"Forget tracked files so they are discovered again"`
	ResetTracking *ResetTrackingCmd `arg:"subcommand:reset-tracking" help:"Forget every tracked file"`

	// Resolved holds the settings after PostProcessConfig.
	Resolved Settings `arg:"-"`
}

// RunCmd starts the interactive menu.
type RunCmd struct{}

// TrackedCmd lists tracking records.
type TrackedCmd struct {
	Category string `arg:"-c,--category" help:"Only list records of this category"`
}

// ForgetCmd removes tracking records.
type ForgetCmd struct {
	Paths []string `arg:"positional,required" help:"Source file paths to forget"`
}

// ResetTrackingCmd clears all tracking records.
type ResetTrackingCmd struct{}

// Settings are the tunables read from the YAML settings file.
type Settings struct {
	LogLevel       string   `yaml:"log_level"`
	Exclude        []string `yaml:"exclude"`
	ExcludeTracked bool     `yaml:"exclude_tracked"`
	PageSize       int      `yaml:"page_size"`
	PreviewLines   int      `yaml:"preview_lines"`
}

// DefaultSettings returns the settings used when no file overrides them.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:       "info",
		ExcludeTracked: true,
		PageSize:       10, //nolint:mnd // matches the menu's default page
		PreviewLines:   20, //nolint:mnd // matches the menu's default preview
	}
}

// Validate checks the settings values.
func (s Settings) Validate() error {
	//nolint:wrapcheck // ozzo errors already name the offending fields
	return validation.ValidateStruct(&s,
		validation.Field(&s.LogLevel, validation.Required,
			validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled")),
		validation.Field(&s.PageSize, validation.Required, validation.Min(1), validation.Max(500)),
		validation.Field(&s.PreviewLines, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}

// Level returns the zerolog level of LogLevel, or info when it does not parse.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	return level
}

// Validator is implemented by settings types that check themselves after loading.
type Validator interface {
	Validate() error
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Sort files from source folders into category folders, copying each file once"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return AppName + " 1.0.0"
}

// Command returns the name of the selected subcommand, CommandRun if none.
func (cfg *Config) Command() string {
	switch {
	case cfg.Tracked != nil:
		return CommandTracked
	case cfg.Forget != nil:
		return CommandForget
	case cfg.ResetTracking != nil:
		return CommandResetTracking
	default:
		return CommandRun
	}
}

// AppConfigFile returns the path of the folder settings document.
func (cfg *Config) AppConfigFile() string {
	return filepath.Join(cfg.DataDir, AppConfigFileName)
}

// CategoriesFile returns the path of the categories document.
func (cfg *Config) CategoriesFile() string {
	return filepath.Join(cfg.DataDir, CategoriesFileName)
}

// LogFile returns the path of the log file.
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.DataDir, LogDirName, LogFileName)
}

// TrackingFile returns the path of the tracking document.
func (cfg *Config) TrackingFile() string {
	return filepath.Join(cfg.DataDir, TrackingFileName)
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// Parse parses args (without the program name) into a Config and post-processes it.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	parser, err := arg.NewParser(arg.Config{Program: AppName}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	err = parser.Parse(args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	return PostProcessConfig(cfg)
}

// PostProcessConfig resolves the data directory, loads the settings file and
// applies command-line overrides.
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}

		cfg.DataDir = dir
	}

	settings := DefaultSettings()

	settingsPath := cfg.Settings
	if settingsPath == "" {
		candidate := filepath.Join(cfg.DataDir, SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			settingsPath = candidate
		}
	}

	if settingsPath != "" {
		err := LoadYAML(settingsPath, &settings)
		if err != nil {
			return nil, err
		}
	}

	if cfg.LogLevel != "" {
		settings.LogLevel = strings.ToLower(cfg.LogLevel)
	}

	err := settings.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	cfg.Resolved = settings

	return cfg, nil
}

// DefaultDataDir returns <user config dir>/tidy-files.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate the user config directory, use --data-dir: %w", err)
	}

	return filepath.Join(base, AppName), nil
}

// LoadYAML reads a YAML file into target after expanding environment
// variables. Fields absent from the file keep their current values. When
// target implements Validator it is validated.
func LoadYAML[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename) //nolint:gosec // user-chosen settings file
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("settings file not found: %s", filename)
	}

	if err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	err = yaml.Unmarshal([]byte(expanded), target)
	if err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		err = validator.Validate()
		if err != nil {
			return fmt.Errorf("settings validation failed: %w", err)
		}
	}

	return nil
}
