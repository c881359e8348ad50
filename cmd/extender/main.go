package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justchokingaround/extender/internal/config"
	"github.com/justchokingaround/extender/internal/database"
	"github.com/justchokingaround/extender/internal/extender/tools"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile  string
	logLevel string
	noColor  bool

	// Global config and logger. cfg is replaced on reload, read it through currentConfig.
	cfgMu  sync.RWMutex
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "extender",
	Short: "Repeat video files into longer ones without re-encoding",
	Long: `extender makes long videos out of short ones by concatenating each input
with itself through ffmpeg's concat demuxer, using stream copy.

Ask for a target length (--hours/--minutes) and extender works out how many
copies are needed, or ask for an exact number of copies with --times.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for config init command
		if cmd.Name() == "init" && cmd.Parent().Name() == "config" {
			return nil
		}

		if err := config.InitializeDirs(); err != nil {
			return fmt.Errorf("failed to initialize directories: %w", err)
		}

		loaded, v, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(loaded)
		setConfig(loaded)

		logger, err = config.InitLogger(&loaded.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := database.Init(&loaded.Database); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		// Hot reload. A batch keeps the settings it started with.
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("config file changed", "name", e.Name)
			if err := reloadConfig(v); err != nil {
				logger.Error("failed to reload config", "error", err)
			}
		})

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := database.Close(); err != nil && logger != nil {
			logger.Error("failed to close database", "error", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/extender/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}

// versionCmd displays version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("extender version %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
	},
}

// toolsCmd reports where ffmpeg and ffprobe were found
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show the detected ffmpeg and ffprobe",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		ffmpeg, ffprobe, err := tools.Detect(c.Tools.FFmpeg, c.Tools.FFprobe)
		for _, info := range []*tools.ToolInfo{ffmpeg, ffprobe} {
			if !info.Available {
				fmt.Printf("%-8s not found\n", info.Type)
				continue
			}
			ver := info.Version
			if ver == "" {
				ver = "unknown version"
			}
			fmt.Printf("%-8s %s (%s)\n", info.Type, info.Binary, ver)
		}
		return err
	},
}

// configCmd handles configuration operations
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			configPath = filepath.Join(config.GetConfigDir(), "config.yaml")
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s", configPath)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := config.SaveDefaultConfig(configPath); err != nil {
			return fmt.Errorf("failed to save default configuration: %w", err)
		}

		fmt.Printf("Default configuration generated successfully at: %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		fmt.Printf("Config file:     %s\n", configFilePath())
		fmt.Printf("Log level:       %s\n", c.Logging.Level)
		fmt.Printf("Log file:        %s\n", c.Logging.File)
		fmt.Printf("Database:        %s\n", c.Database.Path)
		fmt.Printf("ffmpeg:          %s\n", orDefault(c.Tools.FFmpeg, "(PATH)"))
		fmt.Printf("ffprobe:         %s\n", orDefault(c.Tools.FFprobe, "(PATH)"))
		fmt.Printf("Output dir:      %s\n", orDefault(c.Extender.OutputDir, "(next to input)"))
		fmt.Printf("Manifest dir:    %s\n", orDefault(c.Extender.ManifestDir, os.TempDir()))
		fmt.Printf("Overwrite:       %t\n", c.Extender.Overwrite)
		fmt.Printf("Terminate grace: %s\n", c.Extender.TerminateGrace)
		fmt.Printf("Min free space:  %d MB\n", c.Extender.MinFreeSpace)
		if c.Metrics.Enabled {
			fmt.Printf("Metrics:         http://%s/metrics\n", c.Metrics.Listen)
		} else {
			fmt.Printf("Metrics:         disabled\n")
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Display configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(configFilePath())
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// currentConfig returns the active configuration. Treat it as read-only.
func currentConfig() *config.Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

func setConfig(c *config.Config) {
	cfgMu.Lock()
	cfg = c
	cfgMu.Unlock()
}

// reloadConfig decodes v into a new Config and swaps it in when it validates
func reloadConfig(v *viper.Viper) error {
	next := &config.Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	applyFlagOverrides(next)
	if err := next.Validate(); err != nil {
		return err
	}
	setConfig(next)
	return nil
}

// applyFlagOverrides lets command line flags win over the config file
func applyFlagOverrides(c *config.Config) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor {
		c.Logging.Color = false
	}
}

func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(config.GetConfigDir(), "config.yaml")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
