package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds runtime configuration. Values come from smalltix.toml when
// present, with environment variables and home-directory defaults filling
// the gaps.
type Config struct {
	Root      string `toml:"root"`     // state directory (~/.smalltix)
	DBPath    string `toml:"db"`       // sqlite file (Root/objects.db)
	Renderer  string `toml:"renderer"` // ws:// address of the canvas relay
	Debug     bool   `toml:"debug"`
	NoPersist bool   `toml:"no-persist"`
}

// DefaultConfig returns a configuration from environment and defaults.
func DefaultConfig() *Config {
	root := os.Getenv("SMALLTIX_ROOT")
	if root == "" {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, ".smalltix")
	}

	dbPath := os.Getenv("SMALLTIX_DB")
	if dbPath == "" {
		dbPath = filepath.Join(root, "objects.db")
	}

	return &Config{
		Root:   root,
		DBPath: dbPath,
		Debug:  os.Getenv("SMALLTIX_DEBUG") != "",
	}
}

// LoadConfig reads smalltix.toml from dir, layered over DefaultConfig. A
// missing file is not an error.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, "smalltix.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
