// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads bearcat settings from defaults, an optional YAML
// file, BEARCAT_ environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// SerialConfig selects and configures the serial port
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baudRate"`
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
}

// DiscoveryConfig lists the USB IDs probed when no port is given
type DiscoveryConfig struct {
	DeviceIDs []string `mapstructure:"deviceIds"`
}

// ScannerConfig tunes the protocol session
type ScannerConfig struct {
	SupportedModels []string          `mapstructure:"supportedModels"`
	Bandplans       map[string]string `mapstructure:"bandplans"`
	Retries         int               `mapstructure:"retries"`
	VerifyWrites    bool              `mapstructure:"verifyWrites"`
	CommandInterval time.Duration     `mapstructure:"commandInterval"`
}

// LumberjackConfig configures the rolling log file
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig sets log level and output
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig sets where command metrics are exported
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Config is the top level configuration
type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// flagKeys maps command line flags to config keys
var flagKeys = map[string]string{
	"port":             "serial.port",
	"baud":             "serial.baudRate",
	"timeout":          "serial.readTimeout",
	"retries":          "scanner.retries",
	"verify":           "scanner.verifyWrites",
	"log-level":        "logging.level",
	"log-format":       "logging.format",
	"log-file":         "logging.file.filename",
	"metrics-textfile": "metrics.textfile",
}

// Load reads the configuration. If path is empty, bearcat.yaml is looked
// up in the working directory and $HOME/.config/bearcat; a missing file is
// not an error. Flags present in flags are bound over every other source.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("BEARCAT_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bearcat"))
		}
		v.SetConfigName("bearcat")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("BEARCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baudRate", 57600)
	v.SetDefault("serial.readTimeout", "3s")

	v.SetDefault("discovery.deviceIds", []string{"10c4:ea60"})

	v.SetDefault("scanner.supportedModels", bearcat.DefaultSupportedModels)
	v.SetDefault("scanner.bandplans", bearcat.DefaultBandplans)
	v.SetDefault("scanner.retries", 1)
	v.SetDefault("scanner.verifyWrites", false)
	v.SetDefault("scanner.commandInterval", "0s")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("metrics.textfile", "")
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("config: serial.baudRate must be positive, got %d", c.Serial.BaudRate)
	}
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("config: serial.readTimeout must be positive, got %v", c.Serial.ReadTimeout)
	}
	if c.Scanner.Retries < 0 {
		return fmt.Errorf("config: scanner.retries must not be negative, got %d", c.Scanner.Retries)
	}
	if c.Scanner.CommandInterval < 0 {
		return fmt.Errorf("config: scanner.commandInterval must not be negative, got %v", c.Scanner.CommandInterval)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
