package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "walker" {
		t.Errorf("expected model walker, got %s", cfg.Model)
	}
	if cfg.FrameSkip <= 0 {
		t.Error("frame skip should be positive")
	}
	if cfg.MaxSteps <= 0 {
		t.Error("max steps should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("walker", "two-leg")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scheme != "walker:2x3" {
		t.Errorf("expected scheme walker:2x3, got %s", cfg.Scheme)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("walker", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "two-leg") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets("crawler")) == 0 {
		t.Error("expected presets for crawler")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPartitionNamedVsCustom(t *testing.T) {
	named := DefaultConfig()
	if named.Partition().Named != "walker:2x3" {
		t.Error("scheme name should resolve to a named partition")
	}

	custom := DefaultConfig()
	custom.Scheme = ""
	custom.Agents = []AgentSpec{{ID: "a", Joints: []int{0, 1, 2}}}
	p := custom.Partition()
	if p.Named != "" || len(p.Custom) != 1 {
		t.Errorf("inline agents should resolve to a custom partition, got %+v", p)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("crawler", "split")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scheme != cfg.Scheme || loaded.Policy != cfg.Policy {
		t.Errorf("round trip changed config: %+v", loaded)
	}
}
