package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}
	return path
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected a missing file to be fine, got %v", err)
	}
	want := Default()
	if got.ListenAddr != want.ListenAddr || got.Seed != want.Seed || got.TurnIntervalMs != want.TurnIntervalMs {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	path := writeFile(t, `
seed: 99
turn_interval_ms: 50
spawns:
  - kind: goblin
    count: 3
    x: 4
    y: 5
logging:
  minimum_severity: warn
  verbose: true
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Seed != 99 {
		t.Fatalf("expected seed 99, got %d", got.Seed)
	}
	if got.TurnIntervalMs != 50 {
		t.Fatalf("expected interval 50, got %d", got.TurnIntervalMs)
	}
	if got.ListenAddr != Default().ListenAddr {
		t.Fatalf("expected the default listen address to survive, got %q", got.ListenAddr)
	}
	if len(got.Spawns) != 1 || got.Spawns[0].Kind != "goblin" || got.Spawns[0].Count != 3 {
		t.Fatalf("expected the goblin spawn, got %+v", got.Spawns)
	}
	if got.Logging.MinimumSeverity != "warn" || !got.Logging.Verbose {
		t.Fatalf("expected logging overrides, got %+v", got.Logging)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, "seed: [not a number\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}
