package nastran

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestFile is written into every working directory and describes the
// evaluation that produced it.
const ManifestFile = "run.yaml"

type runManifest struct {
	RunID     string         `yaml:"run_id"`
	Component string         `yaml:"component"`
	Started   time.Time      `yaml:"started"`
	Duration  string         `yaml:"duration"`
	Argv      []string       `yaml:"argv"`
	Source    string         `yaml:"source"`
	Inputs    map[string]any `yaml:"inputs"`
	Outputs   map[string]any `yaml:"outputs"`
}

func writeManifest(ev *Evaluation, argv []string) error {
	m := runManifest{
		RunID:     ev.RunID,
		Component: ev.Component,
		Started:   ev.Started.UTC(),
		Duration:  ev.Duration.String(),
		Argv:      argv,
		Source:    string(ev.Source),
		Inputs:    PlainValues(ev.Inputs),
		Outputs:   PlainValues(ev.Outputs),
	}
	raw, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encoding run manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(ev.Dir, ManifestFile), raw, 0o644); err != nil {
		return fmt.Errorf("writing run manifest: %w", err)
	}
	return nil
}
