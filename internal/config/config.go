package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user directory holding config, lock and index
	DirName = ".doxsearch"

	// FileName is the config file inside DirName
	FileName = "config.yaml"

	DefaultCategory   = "all"
	DefaultMaxResults = 10
)

// Config is the in-memory representation of ~/.doxsearch/config.yaml.
type Config struct {
	SourceDir  string `yaml:"source_dir,omitempty"` // Doxygen html/search directory
	Category   string `yaml:"category,omitempty"`   // Table family to load: all, classes, pages...
	BaseURL    string `yaml:"base_url,omitempty"`   // Root URL of the rendered documentation
	DataDir    string `yaml:"data_dir,omitempty"`   // Lock file and on-disk index location
	Watch      bool   `yaml:"watch,omitempty"`      // Reload when the source tables change
	MaxResults int    `yaml:"max_results,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Category:   DefaultCategory,
		MaxResults: DefaultMaxResults,
	}
}

// Pattern returns the glob matching the configured table files
func (c *Config) Pattern() string {
	return c.Category + "_*.js"
}

// ConfigPath returns the absolute path to ~/.doxsearch/config.yaml.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DirName, FileName), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// Load reads path, falling back to defaults when it does not exist,
// then applies environment overrides and fills in derived values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the config from ConfigPath
func LoadDefault() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save marshals cfg and writes it to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from DOXSEARCH_* variables
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("DOXSEARCH_SOURCE_DIR"); ok {
		cfg.SourceDir = v
	}
	if v, ok := lookup("DOXSEARCH_CATEGORY"); ok {
		cfg.Category = v
	}
	if v, ok := lookup("DOXSEARCH_BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := lookup("DOXSEARCH_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup("DOXSEARCH_WATCH"); ok {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DOXSEARCH_WATCH %q: %w", v, err)
		}
		cfg.Watch = watch
	}
	if v, ok := lookup("DOXSEARCH_MAX_RESULTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DOXSEARCH_MAX_RESULTS %q: %w", v, err)
		}
		cfg.MaxResults = n
	}
	return nil
}

func (c *Config) normalize() error {
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}

	var err error
	if c.SourceDir, err = ExpandPath(c.SourceDir); err != nil {
		return err
	}
	if c.DataDir, err = ExpandPath(c.DataDir); err != nil {
		return err
	}
	if c.DataDir == "" {
		c.DataDir = DiscoverDataDir()
	}
	return nil
}

// DiscoverDataDir picks the data directory for lock and index files.
// Priority: ~/.doxsearch > <binary>/../data > ./data
func DiscoverDataDir() string {
	// Strategy 1: user home directory (standalone installation)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userDataDir := filepath.Join(homeDir, DirName)

		if info, err := os.Stat(userDataDir); err == nil && info.IsDir() {
			log.Printf("✓ Data directory: %s (user home)", userDataDir)
			return userDataDir
		}

		if err := os.MkdirAll(userDataDir, 0o755); err == nil {
			log.Printf("✓ Data directory created: %s", userDataDir)
			return userDataDir
		}

		log.Printf("Warning: Could not create user data directory at %s: %v", userDataDir, err)
	} else {
		log.Printf("Warning: Could not determine user home directory: %v", err)
	}

	// Strategy 2: relative to executable (packaged installation)
	execPath, err := os.Executable()
	if err == nil {
		relativeDataDir := filepath.Join(filepath.Dir(execPath), "..", "data")
		if info, err := os.Stat(relativeDataDir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(relativeDataDir)
			log.Printf("✓ Data directory: %s (relative to binary)", abs)
			return abs
		}
	}

	// Strategy 3: current working directory
	dataDir := filepath.Join(".", "data")
	log.Printf("⚠️  Data directory (fallback): %s", dataDir)
	os.MkdirAll(dataDir, 0o755)
	return dataDir
}
