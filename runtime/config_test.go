package runtime

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Root == "" || cfg.DBPath == "" {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := `
root = "/var/lib/smalltix"
db = "/var/lib/smalltix/world.db"
renderer = "ws://localhost:4000"
debug = true
`
	if err := os.WriteFile(filepath.Join(dir, "smalltix.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Root != "/var/lib/smalltix" {
		t.Errorf("Root = %q", cfg.Root)
	}
	if cfg.DBPath != "/var/lib/smalltix/world.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Renderer != "ws://localhost:4000" {
		t.Errorf("Renderer = %q", cfg.Renderer)
	}
	if !cfg.Debug {
		t.Error("Debug not set")
	}
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "smalltix.toml"), []byte("root = [broken"), 0o644)
	if _, err := LoadConfig(dir); err == nil {
		t.Error("malformed config accepted")
	}
}
