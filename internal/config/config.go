package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// DefaultScanTimeout bounds each tool invocation made by the CLI
const DefaultScanTimeout = 15 * time.Second

// Config holds CLI preferences, partly shared with the desktop app
type Config struct {
	Favorites                []uint16 `json:"favorites" plist:"favoritesV2"`
	ShowOnlyDevelopmentPorts bool     `json:"showOnlyDevelopmentPorts" plist:"showOnlyDevelopmentPorts"`
	GroupByProcess           bool     `json:"groupByProcess" plist:"groupByProcess"`
	ScanTimeout              Duration `json:"scanTimeout"`
	DatabasePath             string   `json:"databasePath,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Favorites:   []uint16{},
		ScanTimeout: Duration(DefaultScanTimeout),
	}
}

// Store interface for config persistence
type Store interface {
	Load() (*Config, error)
	Save(cfg *Config) error
}

// IsFavorite checks if a port is in favorites
func (c *Config) IsFavorite(port uint16) bool {
	return slices.Contains(c.Favorites, port)
}

// AddFavorite adds a port to favorites
func (c *Config) AddFavorite(port uint16) {
	if !c.IsFavorite(port) {
		c.Favorites = append(c.Favorites, port)
	}
}

// RemoveFavorite removes a port from favorites
func (c *Config) RemoveFavorite(port uint16) {
	filtered := []uint16{}
	for _, p := range c.Favorites {
		if p != port {
			filtered = append(filtered, p)
		}
	}
	c.Favorites = filtered
}

// ToggleFavorite flips the favorite state of port and returns the new state
func (c *Config) ToggleFavorite(port uint16) bool {
	if c.IsFavorite(port) {
		c.RemoveFavorite(port)
		return false
	}
	c.AddFavorite(port)
	return true
}

// Duration is a time.Duration stored as text, e.g. "15s"
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"15s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
