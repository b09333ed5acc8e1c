/*
Package config describes which formulas exist and where their dictionaries live.

A formula is a named, independently compiled and switchable dictionary set.
The config file is plain TOML:

	[engine]
	result_limit = 8

	[[formulas]]
	id = "sunman"
	name = "Sunman input method"
	dictionaries = ["sunman.dict", "ext.dict"]

The core never resolves directory conventions on its own; callers load a
Config from an explicit path and pass resolved source/target directories
into compilation and engine construction.
*/
package config

import (
	"fmt"

	"github.com/shuru-ime/shuru/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Engine   EngineConfig `toml:"engine"`
	Formulas []Formula    `toml:"formulas"`
}

// EngineConfig has engine related options.
type EngineConfig struct {
	ResultLimit int `toml:"result_limit"`
}

// Formula identifies one compiled, independently switchable dictionary set.
// Dictionaries are paths relative to the formula's source directory, in the
// order they should be compiled.
type Formula struct {
	ID           string   `toml:"id"`
	Name         string   `toml:"name,omitempty"`
	Dictionaries []string `toml:"dictionaries"`
}

// Validate checks the formula is usable as a compilation unit.
func (f *Formula) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("formula has empty id")
	}
	if len(f.Dictionaries) == 0 {
		return fmt.Errorf("formula %q lists no dictionaries", f.ID)
	}
	return nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			ResultLimit: 8,
		},
	}
}

// Load reads a Config from a TOML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := utils.LoadTOMLFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	for i := range cfg.Formulas {
		if err := cfg.Formulas[i].Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Save writes the Config into a TOML file.
func Save(cfg *Config, path string) error {
	return utils.SaveTOMLFile(cfg, path)
}

// Formula returns the formula with the given id, or nil.
func (c *Config) Formula(id string) *Formula {
	for i := range c.Formulas {
		if c.Formulas[i].ID == id {
			return &c.Formulas[i]
		}
	}
	return nil
}
