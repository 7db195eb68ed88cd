package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	configDir  = ".portmanager"
	configFile = "config.json"

	// EnvConfigPath overrides the config file location
	EnvConfigPath = "PORTMANAGER_CONFIG"
)

type jsonStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) Store {
	return &jsonStore{path: path}
}

// DefaultPath returns $PORTMANAGER_CONFIG or ~/.portmanager/config.json
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir, configFile), nil
}

// NewStore returns the store at path, or at DefaultPath when path is empty.
// A missing config file is seeded from the desktop app preferences if any.
func NewStore(path string) Store {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			// Fallback: return a store that will return default config
			return &fallbackStore{}
		}
		path = p
	}

	store := NewFileStore(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if plistCfg := loadFromPlist(); plistCfg != nil {
			_ = store.Save(plistCfg)
		}
	}

	return store
}

func (s *jsonStore) Load() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Ensure non-nil slices for clean JSON
	if cfg.Favorites == nil {
		cfg.Favorites = []uint16{}
	}

	return cfg, nil
}

func (s *jsonStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

type fallbackStore struct{}

func (f *fallbackStore) Load() (*Config, error) {
	return Default(), nil
}

func (f *fallbackStore) Save(cfg *Config) error {
	return nil
}
