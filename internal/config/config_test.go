package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	setupTestHome(t)
	cfg := DefaultConfig()

	if cfg.DefaultModel != "gemini-2.5-flash" {
		t.Errorf("Expected default model to be 'gemini-2.5-flash', got '%s'", cfg.DefaultModel)
	}
	if cfg.Persona != DefaultPersonaName {
		t.Errorf("Expected persona %s, got %s", DefaultPersonaName, cfg.Persona)
	}
	if cfg.Verbose {
		t.Errorf("Expected Verbose to be false, got %v", cfg.Verbose)
	}
	if cfg.ListenAddr == "" {
		t.Error("ListenAddr should have a default")
	}
	if filepath.Base(cfg.LogFile) != "whiskerion.log" {
		t.Errorf("unexpected log file %q", cfg.LogFile)
	}
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := setupTestHome(t)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %s, want %s", got, dir)
	}
}

func TestGetConfigDir_Home(t *testing.T) {
	t.Setenv(EnvHome, "")
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("GetConfigDir() returned relative path: %s", dir)
	}
	if filepath.Base(dir) != ".whiskerion" {
		t.Errorf("GetConfigDir() = %s", dir)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned: %v", err)
	}
	if cfg.DefaultModel == "" {
		t.Error("DefaultModel should not be empty")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := setupTestHome(t)

	cfg := DefaultConfig()
	cfg.DefaultModel = "gemini-2.5-pro"
	cfg.CopyToClipboard = true
	cfg.TUITheme = "nord"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.DefaultModel != "gemini-2.5-pro" || !loaded.CopyToClipboard || loaded.TUITheme != "nord" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := setupTestHome(t)

	data, _ := json.Marshal(map[string]any{"default_model": "gemini-2.0-flash"})
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DefaultModel != "gemini-2.0-flash" {
		t.Errorf("DefaultModel = %s", cfg.DefaultModel)
	}
	if cfg.Persona != DefaultPersonaName {
		t.Errorf("Persona default lost: %q", cfg.Persona)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := setupTestHome(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg.DefaultModel != "gemini-2.5-flash" {
		t.Error("defaults should be returned on parse error")
	}
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		gemini string
		legacy string
		want   string
	}{
		{"none", "", "", ""},
		{"gemini only", "g-key", "", "g-key"},
		{"legacy only", "", "l-key", "l-key"},
		{"gemini wins", "g-key", "l-key", "g-key"},
		{"whitespace trimmed", "  g-key \n", "", "g-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, tt.gemini)
			t.Setenv(EnvLegacyAPIKey, tt.legacy)
			if got := APIKey(); got != tt.want {
				t.Errorf("APIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
