package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "extender"

// Config is the root application configuration
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Tools     ToolsConfig     `mapstructure:"tools" yaml:"tools"`
	Extender  ExtenderConfig  `mapstructure:"extender" yaml:"extender"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Clipboard ClipboardConfig `mapstructure:"clipboard" yaml:"clipboard"`
}

// LoggingConfig controls the slog handler and log rotation
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // text or json
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`       // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // files
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`         // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
	Color      bool   `mapstructure:"color" yaml:"color"`
}

// DatabaseConfig controls the run history database
type DatabaseConfig struct {
	Path           string `mapstructure:"path" yaml:"path"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	WALMode        bool   `mapstructure:"wal_mode" yaml:"wal_mode"`
	AutoVacuum     bool   `mapstructure:"auto_vacuum" yaml:"auto_vacuum"`
}

// ToolsConfig holds explicit locations of the external media tools.
// Empty values are resolved through PATH.
type ToolsConfig struct {
	FFmpeg  string `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	FFprobe string `mapstructure:"ffprobe" yaml:"ffprobe"`
}

// ExtenderConfig controls how files are repeated
type ExtenderConfig struct {
	// ManifestDir is where concat manifests are written. Empty means os.TempDir().
	ManifestDir string `mapstructure:"manifest_dir" yaml:"manifest_dir"`
	// OutputDir places outputs in a fixed directory instead of next to the input.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// Overwrite passes -y to ffmpeg; otherwise -n and an existing output fails the file.
	Overwrite bool `mapstructure:"overwrite" yaml:"overwrite"`
	// TerminateGrace is how long a terminated ffmpeg may take to exit before it is killed.
	TerminateGrace time.Duration `mapstructure:"terminate_grace" yaml:"terminate_grace"`
	// MinFreeSpace is extra headroom in MB required on the output volume beyond the estimated output size.
	MinFreeSpace int `mapstructure:"min_free_space" yaml:"min_free_space"`
	// ProgressInterval throttles progress redraws in the terminal UI.
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
}

// ClipboardConfig overrides the clipboard command used when the native clipboard fails
type ClipboardConfig struct {
	Command string `mapstructure:"command" yaml:"command"` // e.g. "wl-copy" or "xclip -selection clipboard"
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       filepath.Join(getStateDir(), appName, appName+".log"),
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   false,
			Color:      true,
		},
		Database: DatabaseConfig{
			Path:           filepath.Join(getDataDir(), appName, appName+".db"),
			MaxConnections: 4,
			WALMode:        true,
			AutoVacuum:     true,
		},
		Tools: ToolsConfig{},
		Extender: ExtenderConfig{
			Overwrite:        true,
			TerminateGrace:   5 * time.Second,
			MinFreeSpace:     0,
			ProgressInterval: 100 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
		},
	}
}

// setDefaults registers every default with viper so env overrides work for unset keys
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("logging.compress", cfg.Logging.Compress)
	v.SetDefault("logging.color", cfg.Logging.Color)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.max_connections", cfg.Database.MaxConnections)
	v.SetDefault("database.wal_mode", cfg.Database.WALMode)
	v.SetDefault("database.auto_vacuum", cfg.Database.AutoVacuum)

	v.SetDefault("tools.ffmpeg", cfg.Tools.FFmpeg)
	v.SetDefault("tools.ffprobe", cfg.Tools.FFprobe)

	v.SetDefault("extender.manifest_dir", cfg.Extender.ManifestDir)
	v.SetDefault("extender.output_dir", cfg.Extender.OutputDir)
	v.SetDefault("extender.overwrite", cfg.Extender.Overwrite)
	v.SetDefault("extender.terminate_grace", cfg.Extender.TerminateGrace)
	v.SetDefault("extender.min_free_space", cfg.Extender.MinFreeSpace)
	v.SetDefault("extender.progress_interval", cfg.Extender.ProgressInterval)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.listen", cfg.Metrics.Listen)

	v.SetDefault("clipboard.command", cfg.Clipboard.Command)
}

// Load reads configuration from cfgFile, or from the default location when empty.
// A missing config file is not an error; defaults and environment apply.
func Load(cfgFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(GetConfigDir())
	}

	v.SetEnvPrefix("EXTENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile != "" && os.IsNotExist(err)) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, v, nil
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	if c.Extender.TerminateGrace < 0 {
		return fmt.Errorf("extender.terminate_grace must not be negative")
	}
	if c.Extender.MinFreeSpace < 0 {
		return fmt.Errorf("extender.min_free_space must not be negative")
	}
	if c.Database.MaxConnections < 1 {
		c.Database.MaxConnections = 1
	}
	return nil
}

// SaveDefaultConfig writes the default configuration as YAML to path
func SaveDefaultConfig(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// InitializeDirs creates the config, data, and state directories
func InitializeDirs() error {
	dirs := []string{
		GetConfigDir(),
		filepath.Join(getDataDir(), appName),
		filepath.Join(getStateDir(), appName),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// GetConfigDir returns the directory holding config.yaml
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(homeDir(), ".config", appName)
}

func getDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "share")
}

func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "state")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}
