package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Mods       ModsConfig       `mapstructure:"mods"`
	GameBanana GameBananaConfig `mapstructure:"gamebanana"`
	Server     ServerConfig     `mapstructure:"server"`
	Download   DownloadConfig   `mapstructure:"download"`
	Launcher   LauncherConfig   `mapstructure:"launcher"`
}

// ModsConfig holds install location and scan settings.
type ModsConfig struct {
	InstallLocation    string `mapstructure:"install_location"`
	Validate           bool   `mapstructure:"validate"`
	ShowTerminalOutput bool   `mapstructure:"show_terminal_output"`
}

// GameBananaConfig holds catalog API settings.
type GameBananaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	GameID  int64  `mapstructure:"game_id"`
	PerPage int    `mapstructure:"per_page"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DownloadConfig holds archive download settings.
type DownloadConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LauncherConfig holds process launch settings.
type LauncherConfig struct {
	Wine    string `mapstructure:"wine"`
	TuneEnv bool   `mapstructure:"tune_env"`
}

// Load reads configuration from file and env. Env var overrides use prefix MODCTL_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MODCTL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MODCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Mods.InstallLocation = expandHome(c.Mods.InstallLocation)
	return c, nil
}

// FilePath returns the config file modctl reads
func FilePath() string {
	if path := os.Getenv("MODCTL_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(configDir(), "config.toml")
}

func setDefaults(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	v.SetDefault("mods.install_location", filepath.Join(homeDir, "Games", "fnf-mods"))
	v.SetDefault("mods.validate", true)
	v.SetDefault("mods.show_terminal_output", true)
	v.SetDefault("gamebanana.base_url", "https://gamebanana.com/apiv11")
	v.SetDefault("gamebanana.game_id", 8694)
	v.SetDefault("gamebanana.per_page", 20)
	v.SetDefault("server.addr", "127.0.0.1:7321")
	v.SetDefault("download.timeout", "0s")
	v.SetDefault("launcher.wine", "wine")
	v.SetDefault("launcher.tune_env", true)
}

func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "modctl")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

