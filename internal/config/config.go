package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"rttdash/internal/channel"
	"rttdash/internal/transport"
)

type Config struct {
	Theme        string          `yaml:"theme"`
	LogLevel     string          `yaml:"log_level"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	Transport    TransportConfig `yaml:"transport"`
	RTT          RTTConfig       `yaml:"rtt"`
}

type TransportConfig struct {
	Kind    string   `yaml:"kind"`
	Dir     string   `yaml:"dir"`
	Command []string `yaml:"command"`
}

type RTTConfig struct {
	ShowTimestamps bool            `yaml:"show_timestamps"`
	LogEnabled     bool            `yaml:"log_enabled"`
	LogPath        string          `yaml:"log_path"`
	Channels       []ChannelConfig `yaml:"channels"`
	Table          string          `yaml:"table"`
}

// ChannelConfig is one explicitly configured tab. Up and Down are channel
// numbers on the target; either may be omitted.
type ChannelConfig struct {
	Up     *int   `yaml:"up"`
	Down   *int   `yaml:"down"`
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
}

// Overrides carries command-line values. Nil fields leave the loaded value alone.
type Overrides struct {
	Transport      *string
	Dir            *string
	Command        []string
	Table          *string
	ShowTimestamps *bool
	LogEnabled     *bool
	LogPath        *string
	Theme          *string
	LogLevel       *string
}

func DefaultConfig() Config {
	return Config{
		Theme:        "mocha",
		LogLevel:     "info",
		PollInterval: 20 * time.Millisecond,
		Transport:    TransportConfig{Kind: transport.KindSim},
		RTT: RTTConfig{
			ShowTimestamps: true,
			LogPath:        "rtt-logs",
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = transport.KindSim
	}

	return cfg, nil
}

// Apply copies every set override into c.
func (c *Config) Apply(o Overrides) {
	if o.Transport != nil {
		c.Transport.Kind = *o.Transport
	}
	if o.Dir != nil {
		c.Transport.Dir = *o.Dir
		if o.Transport == nil {
			c.Transport.Kind = transport.KindDir
		}
	}
	if len(o.Command) > 0 {
		c.Transport.Command = o.Command
		if o.Transport == nil {
			c.Transport.Kind = transport.KindExec
		}
	}
	if o.Table != nil {
		c.RTT.Table = *o.Table
	}
	if o.ShowTimestamps != nil {
		c.RTT.ShowTimestamps = *o.ShowTimestamps
	}
	if o.LogEnabled != nil {
		c.RTT.LogEnabled = *o.LogEnabled
	}
	if o.LogPath != nil {
		c.RTT.LogPath = *o.LogPath
	}
	if o.Theme != nil {
		c.Theme = *o.Theme
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transport.Kind {
	case transport.KindSim:
	case transport.KindDir:
		if c.Transport.Dir == "" {
			errs = append(errs, errors.New("transport.dir is required for the dir transport"))
		}
	case transport.KindExec:
		if len(c.Transport.Command) == 0 {
			errs = append(errs, errors.New("transport.command is required for the exec transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport kind %q", c.Transport.Kind))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}

	for i, ch := range c.RTT.Channels {
		if _, err := channel.ParseFormat(ch.Format); err != nil {
			errs = append(errs, fmt.Errorf("rtt.channels[%d]: %w", i, err))
		}
		if ch.Up == nil && ch.Down == nil {
			errs = append(errs, fmt.Errorf("rtt.channels[%d]: needs an up or down channel number", i))
		}
	}

	return errors.Join(errs...)
}

// ConfigPath returns the config file location used by Load.
func ConfigPath() string {
	return getConfigPath()
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rttdash", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "rttdash", "config.yaml")
	}

	return filepath.Join(home, ".config", "rttdash", "config.yaml")
}
