package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfig = "PAIRMERGE_CONFIG"

// Config represents the pairmerge configuration file
// (~/.config/pairmerge/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	// Encoding defaults
	Depth       *int64  `yaml:"depth"`
	IDSpace     *uint64 `yaml:"id_space"`
	InputFormat string  `yaml:"input_format"`
	Normalize   string  `yaml:"normalize"`
	TableFormat string  `yaml:"table_format"`
	Verify      *bool   `yaml:"verify"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pairmerge", "config.yaml")
}

// LoadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyLogConfig applies config file defaults to the logging flags.
func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyEncodeConfig applies config file defaults to the shared input and
// encoding flags when the corresponding flag was not explicitly set.
func applyEncodeConfig(c *cli.Command, cfg Config, s *encodeSettings) {
	if cfg.InputFormat != "" && !c.IsSet("format") {
		s.inputFormat = cfg.InputFormat
	}
	if cfg.Normalize != "" && !c.IsSet("normalize") {
		s.normalize = cfg.Normalize
	}
	if cfg.IDSpace != nil && !c.IsSet("id-space") {
		s.idSpace = *cfg.IDSpace
	}
	if cfg.Verify != nil && !c.IsSet("verify") {
		s.verify = *cfg.Verify
	}
	if cfg.Depth != nil && !c.IsSet("depth") {
		s.depth = *cfg.Depth
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, depth *int64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.Depth != nil && !c.IsSet("depth") {
		*depth = *cfg.Depth
	}
}

type configKey struct{}
