//go:build darwin

package config

import (
	"os"
	"path/filepath"

	"howett.net/plist"
)

const plistPath = "Library/Preferences/com.portmanager.app.plist"

// plistConfig represents the structure of the GUI's plist file
type plistConfig struct {
	FavoritesV2              []int `plist:"favoritesV2,omitempty"`
	ShowOnlyDevelopmentPorts *bool `plist:"showOnlyDevelopmentPorts,omitempty"`
	GroupByProcess           *bool `plist:"groupByProcess,omitempty"`
}

// loadFromPlist migrates config from the desktop app's plist
func loadFromPlist() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(home, plistPath))
	if err != nil {
		return nil
	}

	return decodePlist(data)
}

func decodePlist(data []byte) *Config {
	var plistCfg plistConfig
	if _, err := plist.Unmarshal(data, &plistCfg); err != nil {
		return nil
	}

	cfg := Default()
	for _, p := range plistCfg.FavoritesV2 {
		if p > 0 && p <= 65535 {
			cfg.AddFavorite(uint16(p))
		}
	}
	if plistCfg.ShowOnlyDevelopmentPorts != nil {
		cfg.ShowOnlyDevelopmentPorts = *plistCfg.ShowOnlyDevelopmentPorts
	}
	if plistCfg.GroupByProcess != nil {
		cfg.GroupByProcess = *plistCfg.GroupByProcess
	}

	if len(cfg.Favorites) == 0 && plistCfg.ShowOnlyDevelopmentPorts == nil && plistCfg.GroupByProcess == nil {
		return nil
	}
	return cfg
}
