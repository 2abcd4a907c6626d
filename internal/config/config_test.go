package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lazypower/aria/internal/aria"
)

func TestDefaultMatchesTuningDefaults(t *testing.T) {
	cfg := Default()
	want := aria.DefaultTuning()

	if cfg.Core.ShortMax != want.ShortMax {
		t.Errorf("ShortMax = %v, want %v", cfg.Core.ShortMax, want.ShortMax)
	}
	if cfg.Core.ReinforcementBase != want.ReinforcementBase {
		t.Errorf("ReinforcementBase = %v, want %v", cfg.Core.ReinforcementBase, want.ReinforcementBase)
	}
	if cfg.Core.TierShort.Interval != want.TierIntervals[aria.TierShort].Interval {
		t.Errorf("TierShort.Interval = %d, want %d", cfg.Core.TierShort.Interval, want.TierIntervals[aria.TierShort].Interval)
	}
	if cfg.Core.Generator.MaxWords != want.Generator.MaxWords {
		t.Errorf("Generator.MaxWords = %d, want %d", cfg.Core.Generator.MaxWords, want.Generator.MaxWords)
	}
	if cfg.Server.Port != 37777 {
		t.Errorf("Server.Port = %d, want 37777", cfg.Server.Port)
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Bind = "0.0.0.0"
	cfg.Server.Port = 8080
	if got := cfg.ListenAddr(); got != "0.0.0.0:8080" {
		t.Errorf("ListenAddr() = %q, want %q", got, "0.0.0.0:8080")
	}
}

func TestToTuningLeavesCategoryMapsAtSpecDefaults(t *testing.T) {
	cfg := Default()
	tuning := cfg.ToTuning()
	want := aria.DefaultTuning()

	if len(tuning.Generator.StartWeights) != len(want.Generator.StartWeights) {
		t.Fatal("ToTuning should leave StartWeights at the spec-literal default map")
	}
	if len(tuning.PromotionModifier) != len(want.PromotionModifier) {
		t.Fatal("ToTuning should leave PromotionModifier at the spec-literal default map")
	}
}

func TestToTuningAppliesOverrides(t *testing.T) {
	cfg := Default()
	cfg.Core.ReinforcementBase = 0.05
	cfg.Core.TierShort.Interval = 10

	tuning := cfg.ToTuning()
	if tuning.ReinforcementBase != 0.05 {
		t.Errorf("ReinforcementBase = %v, want 0.05", tuning.ReinforcementBase)
	}
	if tuning.TierIntervals[aria.TierShort].Interval != 10 {
		t.Errorf("TierShort.Interval = %d, want 10", tuning.TierIntervals[aria.TierShort].Interval)
	}
}

func TestLoadWithNoConfigFileFallsBackToDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(origWd)

	t.Setenv("HOME", tmpDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 37777 {
		t.Errorf("Server.Port = %d, want default 37777", cfg.Server.Port)
	}
	if cfg.Core.ReinforcementBase != aria.DefaultTuning().ReinforcementBase {
		t.Errorf("ReinforcementBase = %v, want default", cfg.Core.ReinforcementBase)
	}
}

func TestLoadReadsExplicitTOMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "aria.toml")
	contents := `
[server]
bind = "0.0.0.0"
port = 9999

[core]
reinforcement_base = 0.1
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Bind != "0.0.0.0" {
		t.Errorf("Server.Bind = %q, want 0.0.0.0", cfg.Server.Bind)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Core.ReinforcementBase != 0.1 {
		t.Errorf("Core.ReinforcementBase = %v, want 0.1", cfg.Core.ReinforcementBase)
	}
	// Unset core fields should still fall back to defaults.
	if cfg.Core.ShortMax != aria.DefaultTuning().ShortMax {
		t.Errorf("Core.ShortMax = %v, want default %v", cfg.Core.ShortMax, aria.DefaultTuning().ShortMax)
	}
}

func TestLoadEnvVarOverride(t *testing.T) {
	tmpDir := t.TempDir()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(origWd)

	t.Setenv("HOME", tmpDir)
	t.Setenv("ARIA_SERVER_PORT", "4242")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4242 {
		t.Errorf("Server.Port = %d, want 4242 from ARIA_SERVER_PORT", cfg.Server.Port)
	}
}
