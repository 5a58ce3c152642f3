package main

import (
	"os"

	"github.com/pelletier/go-toml"
)

type toolConfig struct {
	Indent   string `toml:"indent"`
	LogLevel string `toml:"log_level"`
}

func defaultConfig() *toolConfig {
	return &toolConfig{
		Indent:   "  ",
		LogLevel: "*:INFO",
	}
}

// loadConfig reads the TOML configuration file, falling back to the defaults
// when no path is given. Omitted keys keep their default value.
func loadConfig(path string) (*toolConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
