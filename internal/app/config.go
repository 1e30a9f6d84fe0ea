package app

import (
	"errors"
	"fmt"
)

// Output formats accepted by Config.Output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // hcl files or directories
	Component     string   // may be empty when only one component is loaded

	// Sets are name=value assignments applied before the first evaluation.
	Sets []string
	// CasesPath is a YAML file listing input sets evaluated in order.
	CasesPath string

	Output     string
	RecordPath string // sqlite database, empty disables recording

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	switch cfg.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return nil, fmt.Errorf("invalid output format '%s': must be 'text', 'json' or 'yaml'", cfg.Output)
	}
	for _, s := range cfg.Sets {
		if _, _, err := splitAssignment(s); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
