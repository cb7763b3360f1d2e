// Package tuning loads the operator-editable runtime settings file.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the runtime configuration surface: simulation pacing, world
// seeding, and the observer endpoint. Anything omitted from the file keeps
// its default.
type Tuning struct {
	ListenAddr string `yaml:"listen_addr"`

	Seed           int64  `yaml:"seed"`
	TurnIntervalMs int    `yaml:"turn_interval_ms"`
	MapFile        string `yaml:"map_file"`

	Spawns []Spawn `yaml:"spawns"`

	Logging LogTuning `yaml:"logging"`
}

// Spawn places a group of creatures at startup.
type Spawn struct {
	Kind  string `yaml:"kind"`
	Count int    `yaml:"count"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

// LogTuning overrides the log router defaults.
type LogTuning struct {
	Sinks           []string `yaml:"sinks"`
	MinimumSeverity string   `yaml:"minimum_severity"`
	Verbose         bool     `yaml:"verbose"`
}

// Default returns the settings used when no tuning file exists.
func Default() Tuning {
	return Tuning{
		ListenAddr:     ":8080",
		Seed:           1,
		TurnIntervalMs: 250,
	}
}

// Load parses a tuning file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
