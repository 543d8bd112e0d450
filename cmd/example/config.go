package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/voodooEntity/eidolon/src/system/archivist"
)

type exampleConfig struct {
	Ident      string
	Workers    int
	LogLevel   int
	DebugLevel int
	History    bool
	TickRate   int
	IntervalMS int64
}

type fileConfig struct {
	Ident      string `toml:"ident"`
	Workers    int    `toml:"workers"`
	LogLevel   string `toml:"log_level"`
	DebugLevel int    `toml:"debug_level"`
	History    bool   `toml:"history"`
	TickRate   int    `toml:"tick_rate"`
	IntervalMS int64  `toml:"interval_ms"`
}

func defaultExampleConfig() exampleConfig {
	return exampleConfig{
		Ident:      "example",
		Workers:    1,
		LogLevel:   archivist.LEVEL_INFO,
		DebugLevel: 0,
		History:    true,
		TickRate:   2,
		IntervalMS: 10,
	}
}

// loadExampleConfig starts from the defaults and applies only the keys
// actually present in the given toml file. An empty path just returns
// the defaults.
func loadExampleConfig(path string) (exampleConfig, error) {
	cfg := defaultExampleConfig()
	if "" == path {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return exampleConfig{}, fmt.Errorf("load example config: %w", err)
	}

	if meta.IsDefined("ident") {
		ident := strings.TrimSpace(raw.Ident)
		if ident != "" {
			cfg.Ident = ident
		}
	}
	if meta.IsDefined("workers") {
		if raw.Workers > 0 {
			cfg.Workers = raw.Workers
		}
	}
	if meta.IsDefined("log_level") {
		level, err := parseLogLevel(raw.LogLevel)
		if err != nil {
			return exampleConfig{}, fmt.Errorf("load example config: %w", err)
		}
		cfg.LogLevel = level
	}
	if meta.IsDefined("debug_level") {
		if raw.DebugLevel >= 0 {
			cfg.DebugLevel = raw.DebugLevel
		}
	}
	if meta.IsDefined("history") {
		cfg.History = raw.History
	}
	if meta.IsDefined("tick_rate") {
		if raw.TickRate > 0 {
			cfg.TickRate = raw.TickRate
		}
	}
	if meta.IsDefined("interval_ms") {
		if raw.IntervalMS > 0 {
			cfg.IntervalMS = raw.IntervalMS
		}
	}

	return cfg, nil
}

func parseLogLevel(value string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return archivist.LEVEL_DEBUG, nil
	case "info":
		return archivist.LEVEL_INFO, nil
	case "warning":
		return archivist.LEVEL_WARNING, nil
	case "error":
		return archivist.LEVEL_ERROR, nil
	case "fatal":
		return archivist.LEVEL_FATAL, nil
	}
	return 0, fmt.Errorf("unknown log level %q", value)
}
