package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nzslc.json")

	content := `{
		"optimize": true,
		"partial": false,
		"glVersion": 450,
		"moduleDirs": ["shaders/lib"]
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Optimize == nil || *cfg.Optimize != true {
		t.Errorf("Optimize: got %v, want true", cfg.Optimize)
	}
	if cfg.GLVersion == nil || *cfg.GLVersion != 450 {
		t.Errorf("GLVersion: got %v, want 450", cfg.GLVersion)
	}
	if len(cfg.ModuleDirs) != 1 || cfg.ModuleDirs[0] != "shaders/lib" {
		t.Errorf("ModuleDirs: got %v, want [shaders/lib]", cfg.ModuleDirs)
	}
}

func TestLoadWalksUpToParent(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "shaders")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}

	configPath := filepath.Join(tmpDir, "project", "nzslc.json")
	content := `{"glES": true}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if foundPath != configPath {
		t.Errorf("found config at %s, expected %s", foundPath, configPath)
	}
	if cfg.GLES == nil || *cfg.GLES != true {
		t.Errorf("GLES: got %v, want true", cfg.GLES)
	}
}

func TestLoadNoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, path, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %v", cfg)
	}
	if path != "" {
		t.Errorf("expected empty path, got %s", path)
	}
}

func TestToOptionsAppliesDefaultsForUnsetFields(t *testing.T) {
	trueVal := true
	cfg := &FileConfig{Optimize: &trueVal}

	opts := cfg.ToOptions()

	if !opts.Optimize {
		t.Errorf("Optimize: got %v, want true", opts.Optimize)
	}
	if opts.DebugLevel != DebugRegular {
		t.Errorf("DebugLevel: got %v, want %v (default)", opts.DebugLevel, DebugRegular)
	}
	if opts.SPIRVVersion != "1.0" {
		t.Errorf("SPIRVVersion: got %v, want 1.0 (default)", opts.SPIRVVersion)
	}
}

func TestMergeCLIOverridesFile(t *testing.T) {
	fileGL := 330
	cliGL := 450
	cfg := &FileConfig{GLVersion: &fileGL}

	opts := cfg.Merge(CLIOverrides{GLVersion: &cliGL})

	if opts.GLVersion != 450 {
		t.Errorf("GLVersion: got %v, want 450 (CLI override)", opts.GLVersion)
	}
}

func TestMergeModuleDirsAppend(t *testing.T) {
	cfg := &FileConfig{ModuleDirs: []string{"a"}}
	opts := cfg.Merge(CLIOverrides{ModuleDirs: []string{"b"}})

	if len(opts.ModuleDirs) != 2 {
		t.Errorf("ModuleDirs: got %v, want 2 entries", opts.ModuleDirs)
	}
}

func TestLoadPrefersJSONOverRC(t *testing.T) {
	tmpDir := t.TempDir()

	rcPath := filepath.Join(tmpDir, ".nzslcrc")
	if err := os.WriteFile(rcPath, []byte(`{"glES": true}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if filepath.Base(foundPath) != ".nzslcrc" {
		t.Errorf("expected .nzslcrc, got %s", filepath.Base(foundPath))
	}

	jsonPath := filepath.Join(tmpDir, "nzslc.json")
	if err := os.WriteFile(jsonPath, []byte(`{"glES": false}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Base(foundPath) != "nzslc.json" {
		t.Errorf("expected nzslc.json (higher priority), got %s", filepath.Base(foundPath))
	}
	if cfg.GLES == nil || *cfg.GLES != false {
		t.Errorf("GLES: got %v, want false (from nzslc.json)", cfg.GLES)
	}
}
