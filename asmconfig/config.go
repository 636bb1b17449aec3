// Package asmconfig holds the assembler's user-editable configuration:
// the default processor bit mode, diagnostic behavior and output
// formatting, loaded from a TOML file with sensible built-in defaults.
package asmconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the assembler's tunable settings.
type Config struct {
	// Assembly settings.
	Assembly struct {
		DefaultBitMode  int  `toml:"default_bit_mode"`
		WarnUnusedLabel bool `toml:"warn_unused_label"`
		WarnUndefined   bool `toml:"warn_undefined_label"`
	} `toml:"assembly"`

	// Output settings.
	Output struct {
		Format       string `toml:"format"` // "binary" or "hex"
		BytesPerLine int    `toml:"bytes_per_line"`
	} `toml:"output"`

	// Diagnostics settings.
	Diagnostics struct {
		Verbose     bool `toml:"verbose"`
		DumpSymbols bool `toml:"dump_symbols"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a Config populated with the assembler's built-in
// defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembly.DefaultBitMode = 16
	cfg.Assembly.WarnUnusedLabel = true
	cfg.Assembly.WarnUndefined = true

	cfg.Output.Format = "binary"
	cfg.Output.BytesPerLine = 16

	cfg.Diagnostics.Verbose = false
	cfg.Diagnostics.DumpSymbols = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "asmx86")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "asmx86")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
